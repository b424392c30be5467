package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"mobile-forms/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		RetryConfig: &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("transient errors are retried", func(t *testing.T) {
		calls := 0
		out, err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			if calls < 3 {
				return nil, stderrors.New("rpc error: code = Unavailable")
			}
			return "ok", nil
		}, "create-instance:profile-onboarding")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops at once", func(t *testing.T) {
		calls := 0
		_, err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("invalid variables")
		}, "create-instance:profile-onboarding")
		require.Error(t, err)
		assert.Equal(t, 1, calls)

		var stdErr *errors.StandardError
		require.True(t, stderrors.As(err, &stdErr))
		assert.Equal(t, errors.ErrCodeProcessStartFailed, stdErr.Code)
		assert.False(t, stdErr.Retryable)
	})

	t.Run("retries are bounded", func(t *testing.T) {
		calls := 0
		_, err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("connection refused")
		}, "topology")
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Contains(t, err.(*errors.StandardError).Details, "after 2 attempts")
	})

	t.Run("cancelled context ends the loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := testClient()
		c.config.RetryConfig.BaseDelay = time.Second
		c.config.RetryConfig.MaxDelay = time.Second

		_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
			return nil, stderrors.New("deadline exceeded")
		}, "topology")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStartInstance_SingleAttempt(t *testing.T) {
	t.Run("timeout is not resent", func(t *testing.T) {
		calls := 0
		_, err := testClient().startInstance(context.Background(), "profile-onboarding", func(context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("context deadline exceeded")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)

		var stdErr *errors.StandardError
		require.True(t, stderrors.As(err, &stdErr))
		assert.Equal(t, errors.ErrCodeProcessStartFailed, stdErr.Code)
		assert.NotContains(t, stdErr.Details, "attempts")
	})

	t.Run("returns instance key", func(t *testing.T) {
		calls := 0
		key, err := testClient().startInstance(context.Background(), "profile-onboarding", func(context.Context) (interface{}, error) {
			calls++
			return &pb.CreateProcessInstanceResponse{ProcessInstanceKey: 2251799813685249}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2251799813685249), key)
		assert.Equal(t, 1, calls)
	})

	t.Run("request timeout bounds the send", func(t *testing.T) {
		c := testClient()
		c.config.RequestTimeout = 5 * time.Second
		_, err := c.startInstance(context.Background(), "profile-onboarding", func(ctx context.Context) (interface{}, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil, stderrors.New("unavailable")
		})
		require.Error(t, err)
	})
}

func TestMapZeebeError(t *testing.T) {
	err := MapZeebeError(stderrors.New("process definition not found"), "create-instance:missing", 0)
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeResourceNotFound, stdErr.Code)

	err = MapZeebeError(stderrors.New("connection reset by peer"), "create-instance:p", 1)
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeProcessStartFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
