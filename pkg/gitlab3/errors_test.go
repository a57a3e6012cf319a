package gitlab3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   int
		expected ErrorKind
		failed   bool
	}{
		{200, KindUnknown, false},
		{201, KindUnknown, false},
		{304, KindUnknown, false},
		{399, KindUnknown, false},
		{400, KindMissingRequiredAttribute, true},
		{401, KindUnauthorizedRequest, true},
		{403, KindForbiddenRequest, true},
		{404, KindResourceNotFound, true},
		{405, KindRequestNotSupported, true},
		{409, KindResourceConflict, true},
		{500, KindServerError, true},
		{422, KindMissingRequiredAttribute, true},
		{503, KindServerError, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			t.Parallel()

			kind, failed := KindForStatus(tt.status)
			assert.Equal(t, tt.expected, kind)
			assert.Equal(t, tt.failed, failed)
		})
	}
}

func TestNewStatusError(t *testing.T) {
	t.Parallel()

	t.Run("success codes produce no error", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, NewStatusError(204, "DELETE", "/projects/1", nil))
	})

	t.Run("message is extracted from the body", func(t *testing.T) {
		t.Parallel()

		err := NewStatusError(404, "GET", "https://gitlab.example.com/api/v3/projects/1", []byte(`{"message":"404 Not Found"}`))
		require.NotNil(t, err)
		assert.Equal(t, KindResourceNotFound, err.Kind)
		assert.Equal(t, "404 Not Found", err.Message)
		assert.Equal(t,
			"ResourceNotFound (status 404): GET https://gitlab.example.com/api/v3/projects/1: 404 Not Found",
			err.Error())
	})

	t.Run("non JSON bodies leave the message empty", func(t *testing.T) {
		t.Parallel()

		err := NewStatusError(500, "POST", "/session", []byte("<html>oops</html>"))
		require.NotNil(t, err)
		assert.Equal(t, KindServerError, err.Kind)
		assert.Empty(t, err.Message)
		assert.Equal(t, []byte("<html>oops</html>"), err.Body)
	})
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading project: %w", NewStatusError(409, "POST", "/projects", nil))

	require.ErrorIs(t, err, ErrResourceConflict)
	assert.NotErrorIs(t, err, ErrResourceNotFound)
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := &Error{Kind: KindTransportError, Method: "GET", URL: "/projects", Err: cause}

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrTransportError)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUnauthorized(&Error{Kind: KindUnauthorizedRequest}))
	assert.True(t, IsForbidden(&Error{Kind: KindForbiddenRequest}))
	assert.True(t, IsNotFound(&Error{Kind: KindResourceNotFound}))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindInvalidArgument, KindOf(Errorf(KindInvalidArgument, "bad %d", 1)))
	assert.Equal(t, "InvalidArgument: bad 1", Errorf(KindInvalidArgument, "bad %d", 1).Error())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("listing: %w", WrapError(KindInvalidArgument, ErrUnknownOperation, "gitlab has no list operation %q", "projectz"))

	require.ErrorIs(t, err, ErrUnknownOperation)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrServerError)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
	assert.Equal(t, `listing: InvalidArgument: gitlab has no list operation "projectz": unknown operation`, err.Error())
}
