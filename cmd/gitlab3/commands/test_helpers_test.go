package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// useViper resets the global viper state and points it at a config file in
// a temporary directory. Tests calling it must not run in parallel.
func useViper(t *testing.T, settings map[string]any) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(configFile)

	for key, value := range settings {
		viper.Set(key, value)
	}

	return configFile
}

// runCommand executes cmd with args and returns what it printed.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

type apiCall struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Token  string
}

// fakeAPI serves canned JSON by "METHOD /path" and records every call.
type fakeAPI struct {
	server *httptest.Server
	mu     sync.Mutex
	calls  []apiCall
}

func newFakeAPI(t *testing.T, responses map[string]string) *fakeAPI {
	t.Helper()

	api := &fakeAPI{}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := apiCall{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.EscapedPath(), "/api/v3"),
			Query:  r.URL.RawQuery,
			Token:  r.Header.Get("PRIVATE-TOKEN"),
		}

		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 {
			_ = json.Unmarshal(body, &call.Body)
		}

		api.mu.Lock()
		api.calls = append(api.calls, call)
		api.mu.Unlock()

		response, ok := responses[call.Method+" "+call.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"404 Not Found"}`))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))

	t.Cleanup(api.server.Close)

	return api
}

func (a *fakeAPI) Calls() []apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]apiCall(nil), a.calls...)
}

func requireJSON(t *testing.T, output string) any {
	t.Helper()

	var decoded any
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))

	return decoded
}
