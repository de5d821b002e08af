package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/maniaxatwork/jobs-server/internal/auth/mocks"
)

func newTestAuthenticator(v TokenValidatorInterface, realm string) *Authenticator {
	return &Authenticator{validator: v, realm: realm, publicPaths: NewPublicPaths()}
}

func TestAuthenticator_Required(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		path        string
		authHeader  string
		setupMock   func(*mocks.MockTokenValidatorInterface)
		wantStatus  int
		wantCalled  bool
		wantSubject string
	}{
		{
			name:       "missing authorization header",
			path:       "/admin/archives",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid bearer format - Basic auth",
			path:       "/admin/archives",
			authHeader: "Basic xyz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer token",
			path:       "/admin/archives",
			authHeader: "Bearer ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			path:       "/admin/archives",
			authHeader: "Bearer valid-token",
			setupMock: func(m *mocks.MockTokenValidatorInterface) {
				m.EXPECT().ValidateToken(gomock.Any(), "valid-token").
					Return(jwt.MapClaims{"sub": "2", "name": "editor"}, nil)
			},
			wantStatus:  http.StatusOK,
			wantCalled:  true,
			wantSubject: "2",
		},
		{
			name:       "lowercase scheme",
			path:       "/admin/archives",
			authHeader: "bearer valid-token",
			setupMock: func(m *mocks.MockTokenValidatorInterface) {
				m.EXPECT().ValidateToken(gomock.Any(), "valid-token").
					Return(jwt.MapClaims{"sub": "1"}, nil)
			},
			wantStatus:  http.StatusOK,
			wantCalled:  true,
			wantSubject: "1",
		},
		{
			name:       "invalid token",
			path:       "/admin/archives",
			authHeader: "Bearer bad-token",
			setupMock: func(m *mocks.MockTokenValidatorInterface) {
				m.EXPECT().ValidateToken(gomock.Any(), "bad-token").
					Return(nil, errors.New("validation failed"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "public path skips validation",
			path:       "/health",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockValidator := mocks.NewMockTokenValidatorInterface(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(mockValidator)
			}

			called := false
			var subject string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if identity, ok := IdentityFromContext(r.Context()); ok {
					subject = identity.Subject
				}
				w.WriteHeader(http.StatusOK)
			})

			wrapped := newTestAuthenticator(mockValidator, defaultRealm).Required(handler)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			wrapped.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantSubject, subject)

			if tt.wantStatus == http.StatusUnauthorized {
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestAuthenticator_Optional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authHeader string
		setupMock  func(*mocks.MockTokenValidatorInterface)
		wantStatus int
		wantAuthed bool
	}{
		{
			name:       "anonymous request passes",
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid token sets identity",
			authHeader: "Bearer valid-token",
			setupMock: func(m *mocks.MockTokenValidatorInterface) {
				m.EXPECT().ValidateToken(gomock.Any(), "valid-token").
					Return(jwt.MapClaims{"sub": "7", "groups": []any{float64(5)}}, nil)
			},
			wantStatus: http.StatusOK,
			wantAuthed: true,
		},
		{
			name:       "invalid token is rejected",
			authHeader: "Bearer bad-token",
			setupMock: func(m *mocks.MockTokenValidatorInterface) {
				m.EXPECT().ValidateToken(gomock.Any(), "bad-token").
					Return(nil, errors.New("expired"))
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockValidator := mocks.NewMockTokenValidatorInterface(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(mockValidator)
			}

			authed := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, authed = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/modules/1", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			newTestAuthenticator(mockValidator, defaultRealm).Optional(handler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAuthed, authed)
		})
	}
}

func TestAuthenticator_AnonymousMode(t *testing.T) {
	t.Parallel()

	a := &Authenticator{}
	require.False(t, a.Enabled())

	called := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	})

	for _, h := range []http.Handler{a.Required(handler), a.Optional(handler)} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/archives", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, 2, called)
}

func TestSanitizeHeaderValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean value", "jobs-server", "jobs-server"},
		{"removes newline", "realm\ninjected: evil", "realminjected: evil"},
		{"removes carriage return", "realm\rinjected", "realminjected"},
		{"removes CRLF", "realm\r\nX-Injected: evil", "realmX-Injected: evil"},
		{"escapes quotes", `realm"with"quotes`, `realm\"with\"quotes`},
		{"handles multiple issues", "bad\r\n\"value\"", `bad\"value\"`},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := sanitizeHeaderValue(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticator_WWWAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		realm       string
		wantContain string
	}{
		{
			name:        "custom realm",
			realm:       "test-realm",
			wantContain: `realm="test-realm"`,
		},
		{
			name:        "error code",
			realm:       "test-realm",
			wantContain: `error="invalid_token"`,
		},
		{
			name:        "sanitizes realm with injection attempt",
			realm:       "evil\r\nX-Injected: header",
			wantContain: `realm="evilX-Injected: header"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockValidator := mocks.NewMockTokenValidatorInterface(ctrl)
			mockValidator.EXPECT().ValidateToken(gomock.Any(), gomock.Any()).
				Return(nil, errors.New("fail")).AnyTimes()

			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin/jobs/1", nil)
			req.Header.Set("Authorization", "Bearer test-token")
			rr := httptest.NewRecorder()

			newTestAuthenticator(mockValidator, tt.realm).Required(handler).ServeHTTP(rr, req)

			assert.Contains(t, rr.Header().Get("WWW-Authenticate"), tt.wantContain)
		})
	}
}
