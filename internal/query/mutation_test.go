package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutation_Lifecycle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus Status
	}{
		{name: "success", wantStatus: Success},
		{name: "failure", err: errors.New("denied"), wantStatus: Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			m := NewMutation("delete", func(ctx context.Context, id string) (string, error) {
				calls++
				return "ok:" + id, tt.err
			}, nil)
			assert.Equal(t, Idle, m.Status())

			out, err := m.Run(context.Background(), "abc")
			assert.Equal(t, tt.wantStatus, m.Status())
			assert.Equal(t, 1, calls)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.ErrorIs(t, m.Err(), tt.err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ok:abc", out)
			}

			m.Reset()
			assert.Equal(t, Idle, m.Status())
			assert.NoError(t, m.Err())
		})
	}
}

func TestMutation_LoadingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	m := NewMutation("toggle", func(ctx context.Context, id string) (struct{}, error) {
		<-release
		return struct{}{}, nil
	}, nil)

	done := make(chan struct{})
	go func() {
		_, _ = m.Run(context.Background(), "u1")
		close(done)
	}()

	require.Eventually(t, func() bool { return m.Status() == Loading }, time.Second, time.Millisecond)
	close(release)
	<-done
	assert.Equal(t, Success, m.Status())
}

func TestMutation_CancelDoesNotAbort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMutation("read-all", func(ctx context.Context, _ struct{}) (struct{}, error) {
		return struct{}{}, ctx.Err()
	}, nil)

	_, err := m.Run(ctx, struct{}{})
	assert.NoError(t, err)
}
