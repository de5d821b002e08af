package helpers

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/onsi/gomega"

	jobsapp "github.com/maniaxatwork/jobs-server/internal/app"
	"github.com/maniaxatwork/jobs-server/internal/config"
)

// ServerTestHelper manages the jobs server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	httpClient *http.Client
	app        *jobsapp.JobsApp
	done       chan error
}

// NewServerTestHelper creates a new server test helper for the
// configuration file at configPath
func NewServerTestHelper(ctx context.Context, configPath string) *ServerTestHelper {
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			// redirects of the reader modules are asserted, not followed
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// StartServer builds the application from the configuration file and
// serves it on an ephemeral port. The configuration is watched, so
// rewriting the file reconfigures the running server.
func (s *ServerTestHelper) StartServer() error {
	manager, err := config.NewManager(s.configPath, config.WithDebounce(50*time.Millisecond))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := jobsapp.NewJobsApp(s.ctx, jobsapp.WithConfigManager(manager))
	if err != nil {
		_ = manager.Close()
		return fmt.Errorf("failed to build app: %w", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = app.Stop(time.Second)
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.app = app
	s.baseURL = "http://" + listener.Addr().String()
	s.done = make(chan error, 1)

	go func() {
		err := app.Serve(listener)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Server stopped: %v\n", err)
		}
		s.done <- err
	}()

	return nil
}

// StopServer gracefully stops the server and waits for Serve to return
func (s *ServerTestHelper) StopServer() error {
	if s.app == nil {
		return nil
	}
	if err := s.app.Stop(5 * time.Second); err != nil {
		return err
	}
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("server did not stop in time")
	}
	return nil
}

// WaitForServerReady waits for the server to be ready to accept requests
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/health")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Get makes a GET request to path, authenticated with token when not empty
func (s *ServerTestHelper) Get(path, token string) (*Response, error) {
	return s.Do(http.MethodGet, path, token, "")
}

// GetHTML makes an anonymous GET request to path that accepts HTML
func (s *ServerTestHelper) GetHTML(path string) (*Response, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	return s.send(req)
}

// Do makes a request with an optional JSON body and bearer token
func (s *ServerTestHelper) Do(method, path, token, body string) (*Response, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(s.ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(req)
}

func (s *ServerTestHelper) send(req *http.Request) (*Response, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: string(body)}, nil
}

// GetBaseURL returns the base URL of the server
func (s *ServerTestHelper) GetBaseURL() string {
	return s.baseURL
}
