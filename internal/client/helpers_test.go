package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/stretchr/testify/require"
)

// recordedRequest is what the fake server saw, with the /api/v3 prefix
// removed from the path.
type recordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Body    map[string]any
	RawBody string
	Header  http.Header
}

type fakeGitLab struct {
	server   *httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeGitLab(t *testing.T, handler func(w http.ResponseWriter, req recordedRequest)) *fakeGitLab {
	t.Helper()

	fake := &fakeGitLab{}
	fake.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)

		rec := recordedRequest{
			Method:  request.Method,
			Path:    strings.TrimPrefix(request.URL.EscapedPath(), "/api/v3"),
			Query:   request.URL.Query(),
			RawBody: string(body),
			Header:  request.Header.Clone(),
		}

		if len(body) > 0 {
			_ = json.Unmarshal(body, &rec.Body)
		}

		fake.mu.Lock()
		fake.requests = append(fake.requests, rec)
		fake.mu.Unlock()

		handler(writer, rec)
	}))

	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeGitLab) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeGitLab) connect(t *testing.T, mutate ...func(*gitlab3.Config)) *Connection {
	t.Helper()

	config := &gitlab3.Config{URL: f.server.URL, Token: "secret"}
	for _, fn := range mutate {
		fn(config)
	}

	conn, err := New(context.Background(), config)
	require.NoError(t, err)

	return conn
}

func writeJSON(writer http.ResponseWriter, status int, body string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, _ = writer.Write([]byte(body))
}

// pageOf renders a list payload of objects with the given ids.
func pageOf(ids ...int) string {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = fmt.Sprintf(`{"id":%d,"name":"item-%d"}`, id, id)
	}

	return "[" + strings.Join(items, ",") + "]"
}

func idRange(from, to int) []int {
	ids := make([]int, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}

	return ids
}

func idsOf(resources []*Resource) []any {
	ids := make([]any, len(resources))
	for i, r := range resources {
		ids[i] = r.ID()
	}

	return ids
}

func int64s(ids ...int) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}

	return out
}

func pagesRequested(requests []recordedRequest) []string {
	pages := make([]string, len(requests))
	for i, req := range requests {
		pages[i] = req.Query.Get("page")
	}

	return pages
}
