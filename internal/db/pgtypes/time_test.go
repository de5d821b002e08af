package pgtypes

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_Scan(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   any
		want    time.Time
		wantErr bool
	}{
		{name: "null", input: nil, want: time.Time{}},
		{name: "time", input: ts, want: ts},
		{name: "string", input: "2024-05-17T10:30:00Z", want: ts},
		{name: "bad_string", input: "yesterday", wantErr: true},
		{name: "unsupported", input: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got Time
			err := got.Scan(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time))
		})
	}
}

func TestTime_Value(t *testing.T) {
	t.Parallel()

	v, err := Time{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v, err = NewTime(ts).Value()
	require.NoError(t, err)
	assert.Equal(t, ts, v)
}

func TestUUIDConversions(t *testing.T) {
	t.Parallel()

	assert.False(t, NullUUID(nil).Valid)
	assert.Nil(t, UUIDPtr(uuid.NullUUID{}))

	id := uuid.New()
	n := NullUUID(&id)
	assert.True(t, n.Valid)
	got := UUIDPtr(n)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}
