package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/gitlab3/internal/auth"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires URL", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &gitlab3.Config{})
		require.ErrorIs(t, err, gitlab3.ErrURLRequired)
	})

	t.Run("binds the GitLab tree", func(t *testing.T) {
		t.Parallel()

		conn, err := New(context.Background(), &gitlab3.Config{URL: "https://gitlab.example.com/", Token: "t"})
		require.NoError(t, err)
		assert.Equal(t, "https://gitlab.example.com/api/v3", conn.BaseURL())
		assert.Equal(t, "gitlab", conn.Root().Name())
		assert.Equal(t, "gitlab", conn.TypeName())
		assert.Nil(t, conn.ID())
		assert.Nil(t, conn.Parent())
	})

	t.Run("logs in when only credentials are given", func(t *testing.T) {
		t.Parallel()

		fake := newFakeGitLab(t, func(w http.ResponseWriter, req recordedRequest) {
			if req.Path == "/session" {
				writeJSON(w, http.StatusCreated, `{"id":1,"private_token":"from-session"}`)

				return
			}

			writeJSON(w, http.StatusOK, `{"id":1}`)
		})

		conn, err := New(context.Background(), &gitlab3.Config{URL: fake.server.URL, Username: "root", Password: "5iveL!fe"})
		require.NoError(t, err)

		_, err = conn.Get(context.Background(), "current_user", nil, nil)
		require.NoError(t, err)

		requests := fake.Requests()
		require.Len(t, requests, 2)
		assert.Equal(t, map[string]any{"login": "root", "password": "5iveL!fe"}, requests[0].Body)
		assert.Empty(t, requests[0].Header.Get("PRIVATE-TOKEN"))
		assert.Equal(t, "from-session", requests[1].Header.Get("PRIVATE-TOKEN"))
	})

	t.Run("rejected credentials fail construction", func(t *testing.T) {
		t.Parallel()

		fake := newFakeGitLab(t, func(w http.ResponseWriter, _ recordedRequest) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"401 Unauthorized"}`)
		})

		_, err := New(context.Background(), &gitlab3.Config{URL: fake.server.URL, Username: "root", Password: "wrong"})
		require.ErrorIs(t, err, gitlab3.ErrUnauthorizedRequest)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identifier string
		status     int
		body       string
		expectedOK bool
		field      string
		wantErr    error
	}{
		{
			name:       "username",
			identifier: "root",
			status:     http.StatusCreated,
			body:       `{"private_token":"abc"}`,
			expectedOK: true,
			field:      "login",
		},
		{
			name:       "e-mail",
			identifier: "admin@example.com",
			status:     http.StatusCreated,
			body:       `{"private_token":"abc"}`,
			expectedOK: true,
			field:      "email",
		},
		{
			name:       "rejected",
			identifier: "root",
			status:     http.StatusUnauthorized,
			body:       `{"message":"401 Unauthorized"}`,
			field:      "login",
		},
		{
			name:       "no token in session",
			identifier: "root",
			status:     http.StatusCreated,
			body:       `{"id":1}`,
			field:      "login",
			wantErr:    gitlab3.ErrNoPrivateToken,
		},
		{
			name:       "server error",
			identifier: "root",
			status:     http.StatusInternalServerError,
			body:       `{}`,
			field:      "login",
			wantErr:    gitlab3.ErrServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := newFakeGitLab(t, func(w http.ResponseWriter, _ recordedRequest) {
				writeJSON(w, tt.status, tt.body)
			})

			tokens := auth.NewStaticTokenManager("")
			conn, err := NewWithTokenManager(context.Background(), &gitlab3.Config{URL: fake.server.URL}, tokens)
			require.NoError(t, err)

			ok, err := conn.Login(context.Background(), tt.identifier, "secret")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.expectedOK, ok)

			req := fake.Requests()[0]
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/session", req.Path)
			assert.Equal(t, tt.identifier, req.Body[tt.field])

			token, _ := tokens.GetToken(context.Background())
			if tt.expectedOK {
				assert.Equal(t, "abc", token)
			} else {
				assert.Empty(t, token)
			}
		})
	}
}

type failingTokenManager struct {
	*auth.StaticTokenManager
}

var errReadOnly = errors.New("read-only token store")

func (failingTokenManager) SetToken(string) error {
	return errReadOnly
}

func TestLogin_TokenStoreFailure(t *testing.T) {
	t.Parallel()

	fake := newFakeGitLab(t, func(w http.ResponseWriter, _ recordedRequest) {
		writeJSON(w, http.StatusCreated, `{"private_token":"abc"}`)
	})

	tokens := failingTokenManager{auth.NewStaticTokenManager("")}
	conn, err := NewWithTokenManager(context.Background(), &gitlab3.Config{URL: fake.server.URL}, tokens)
	require.NoError(t, err)

	ok, err := conn.Login(context.Background(), "root", "secret")
	require.ErrorIs(t, err, errReadOnly)
	assert.False(t, ok)
}

func TestStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   int
		expected error
	}{
		{http.StatusBadRequest, gitlab3.ErrMissingRequiredAttribute},
		{http.StatusUnauthorized, gitlab3.ErrUnauthorizedRequest},
		{http.StatusForbidden, gitlab3.ErrForbiddenRequest},
		{http.StatusNotFound, gitlab3.ErrResourceNotFound},
		{http.StatusMethodNotAllowed, gitlab3.ErrRequestNotSupported},
		{http.StatusConflict, gitlab3.ErrResourceConflict},
		{http.StatusUnprocessableEntity, gitlab3.ErrMissingRequiredAttribute},
		{http.StatusInternalServerError, gitlab3.ErrServerError},
		{http.StatusBadGateway, gitlab3.ErrServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			fake := newFakeGitLab(t, func(w http.ResponseWriter, _ recordedRequest) {
				writeJSON(w, tt.status, `{"message":"nope"}`)
			})
			conn := fake.connect(t)

			_, err := conn.Get(context.Background(), "project", 1, nil)
			require.ErrorIs(t, err, tt.expected)

			var glErr *gitlab3.Error
			require.ErrorAs(t, err, &glErr)
			assert.Equal(t, tt.status, glErr.StatusCode)
			assert.Equal(t, "nope", glErr.Message)
			assert.Equal(t, http.MethodGet, glErr.Method)
		})
	}

	t.Run("success codes return the payload", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted} {
			fake := newFakeGitLab(t, func(w http.ResponseWriter, _ recordedRequest) {
				writeJSON(w, status, `{"id":1}`)
			})
			conn := fake.connect(t)

			project, err := conn.Get(context.Background(), "project", 1, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(1), project.ID())
		}
	})
}

func TestConnection_Sudo(t *testing.T) {
	t.Parallel()

	fake := newFakeGitLab(t, func(w http.ResponseWriter, _ recordedRequest) {
		writeJSON(w, http.StatusOK, `{"id":1}`)
	})
	conn := fake.connect(t)

	_, err := conn.Get(context.Background(), "current_user", nil, nil)
	require.NoError(t, err)

	_, err = conn.Get(gitlab3.WithSudo(context.Background(), 12), "current_user", nil, nil)
	require.NoError(t, err)

	requests := fake.Requests()
	assert.Empty(t, requests[0].Header.Get("SUDO"))
	assert.Equal(t, "12", requests[1].Header.Get("SUDO"))
}

func TestConnection_TransportError(t *testing.T) {
	t.Parallel()

	fake := newFakeGitLab(t, func(w http.ResponseWriter, _ recordedRequest) {})
	conn := fake.connect(t, func(c *gitlab3.Config) { c.Timeout = time.Second })
	fake.server.Close()

	_, err := conn.Get(context.Background(), "project", 1, nil)
	require.Error(t, err)
	assert.True(t, gitlab3.IsTransport(err))
}

func TestConnection_Types(t *testing.T) {
	t.Parallel()

	conn, err := New(context.Background(), &gitlab3.Config{URL: "https://gitlab.example.com"})
	require.NoError(t, err)

	seen := map[*ResourceType]bool{}
	for _, typ := range conn.Types() {
		assert.False(t, seen[typ])
		seen[typ] = true

		if typ.Parent() != nil {
			assert.True(t, seen[typ.Parent()], "%s listed before its parent", typ.Name())
		}
	}

	assert.Len(t, seen, 29)
}

func TestEncodeQuery(t *testing.T) {
	t.Parallel()

	values, err := encodeQuery(gitlab3.Params{
		"state":  "opened",
		"labels": []any{"bug", "ui"},
		"skip":   nil,
		"page":   2,
	})
	require.NoError(t, err)
	assert.Equal(t, "opened", values.Get("state"))
	assert.Equal(t, []string{"bug", "ui"}, values["labels"])
	assert.Equal(t, "2", values.Get("page"))
	assert.False(t, values.Has("skip"))

	values, err = encodeQuery(nil)
	require.NoError(t, err)
	assert.Nil(t, values)

	_, err = encodeQuery(gitlab3.Params{"bad": struct{}{}})
	require.ErrorIs(t, err, gitlab3.ErrInvalidArgument)
}

func TestConnection_RetryPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		retryMax int
		attempts int
	}{
		{name: "errors are not retried by default", retryMax: 0, attempts: 1},
		{name: "retries are opt-in", retryMax: 2, attempts: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := newFakeGitLab(t, func(w http.ResponseWriter, _ recordedRequest) {
				writeJSON(w, http.StatusInternalServerError, `{"message":"boom"}`)
			})
			conn := fake.connect(t, func(config *gitlab3.Config) {
				config.RetryMax = tt.retryMax
				config.RetryWaitMin = time.Millisecond
				config.RetryWaitMax = 5 * time.Millisecond
			})

			_, err := conn.Get(context.Background(), "project", 1, nil)
			require.ErrorIs(t, err, gitlab3.ErrServerError)
			assert.Len(t, fake.Requests(), tt.attempts)
		})
	}
}
