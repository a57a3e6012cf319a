package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	glhttp "github.com/fivetwenty-io/gitlab3/internal/http"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTokenManager for testing.
type MockTokenManager struct {
	token string
	err   error
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, m.err
}

func (m *MockTokenManager) SetToken(token string) error {
	m.token = token

	return nil
}

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/projects", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "test-token", request.Header.Get("PRIVATE-TOKEN"))
			assert.Empty(t, request.Header.Get("SUDO"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			response := map[string]string{"id": "42", "name": "test-project"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{token: "test-token"}
		client := glhttp.NewClient(server.URL, tokenManager)

		req := &glhttp.Request{
			Method: "GET",
			Path:   "/projects",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "42", result["id"])
		assert.Equal(t, "test-project", result["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/projects", request.URL.Path)
			assert.Equal(t, "page=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, nil)

		req := &glhttp.Request{
			Method: "GET",
			Path:   "/projects",
			Query:  url.Values{"page": []string{"2"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "test-project", body["name"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, nil)

		req := &glhttp.Request{
			Method: "POST",
			Path:   "/projects",
			Body:   map[string]string{"name": "test-project"},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"message":"404 Project Not Found"}`))
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, nil)

		req := &glhttp.Request{
			Method: "GET",
			Path:   "/projects/invalid",
		}

		resp, err := client.Do(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		var apiErr *gitlab3.Error

		ok := errors.As(err, &apiErr)
		require.True(t, ok)
		assert.Equal(t, gitlab3.KindResourceNotFound, apiErr.Kind)
		assert.Equal(t, "404 Project Not Found", apiErr.Message)
		assert.ErrorIs(t, err, gitlab3.ErrResourceNotFound)
	})

	t.Run("sudo from context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "alice", request.Header.Get("SUDO"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, &MockTokenManager{token: "admin-token"})

		_, err := client.Get(gitlab3.WithSudo(context.Background(), "alice"), "/projects", nil)
		require.NoError(t, err)
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := glhttp.NewClient(serverURL, nil)

		resp, err := client.Get(context.Background(), "/projects", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, gitlab3.IsTransport(err))
	})

	t.Run("token manager failure", func(t *testing.T) {
		t.Parallel()

		client := glhttp.NewClient("http://127.0.0.1:1", &MockTokenManager{err: errors.New("locked")})

		_, err := client.Get(context.Background(), "/projects", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked")
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, nil)

		req := &glhttp.Request{
			Method: "GET",
			Path:   "/projects",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := glhttp.NewClient(server.URL, nil, glhttp.WithLogger(logger), glhttp.WithDebug(true))

		req := &glhttp.Request{
			Method: "GET",
			Path:   "/projects",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*glhttp.Client, context.Context) (*glhttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *glhttp.Client, ctx context.Context) (*glhttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *glhttp.Client, ctx context.Context) (*glhttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *glhttp.Client, ctx context.Context) (*glhttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *glhttp.Client, ctx context.Context) (*glhttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *glhttp.Client, ctx context.Context) (*glhttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := glhttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, nil, glhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, attempts)
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, nil, glhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, attempts)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, nil, glhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, 1, attempts) // Should not retry
	})

	t.Run("does not retry by default", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := glhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, 1, attempts)
		assert.ErrorIs(t, err, gitlab3.ErrServerError)
	})
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "trace-1", request.Header.Get("X-Trace"))
		writer.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	chain := gitlab3.NewInterceptorChain()
	chain.AddRequestInterceptor(gitlab3.HeaderInterceptor(map[string]string{"X-Trace": "trace-1"}))

	var seen []int

	chain.AddResponseInterceptor(func(ctx context.Context, req *gitlab3.Request, resp *gitlab3.Response) error {
		seen = append(seen, resp.StatusCode)
		assert.ErrorIs(t, resp.Error, gitlab3.ErrResourceConflict)
		assert.JSONEq(t, `{"name":"x"}`, string(req.Body))

		return nil
	})

	client := glhttp.NewClient(server.URL, nil, glhttp.WithInterceptors(chain))

	_, err := client.Post(context.Background(), "/projects", map[string]string{"name": "x"})
	require.ErrorIs(t, err, gitlab3.ErrResourceConflict)
	assert.Equal(t, []int{409}, seen)
}

func TestClient_InterceptorHeadersOverride(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, []string{"override-token"}, request.Header.Values("PRIVATE-TOKEN"))
		assert.Equal(t, []string{"bob"}, request.Header.Values("SUDO"))
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	chain := gitlab3.NewInterceptorChain()
	chain.AddRequestInterceptor(gitlab3.HeaderInterceptor(map[string]string{
		"PRIVATE-TOKEN": "override-token",
		"SUDO":          "bob",
	}))

	client := glhttp.NewClient(server.URL, &MockTokenManager{token: "configured-token"}, glhttp.WithInterceptors(chain))

	_, err := client.Get(gitlab3.WithSudo(context.Background(), "alice"), "/projects", nil)
	require.NoError(t, err)
}
