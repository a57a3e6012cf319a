//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/fivetwenty-io/gitlab3/pkg/glclient"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	URL        string
	Token      string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:        os.Getenv("GITLAB3_URL"),
		Token:      os.Getenv("GITLAB3_TOKEN"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("GITLAB3_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the gitlab3 binary
func getBinaryPath() string {
	if path := os.Getenv("GITLAB3_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../gitlab3",
		"./gitlab3",
		"../gitlab3",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "gitlab3"
}

// SkipIfMissingConfig skips test if the GitLab instance is not configured
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.Token == "" {
		t.Skip("GITLAB3_URL or GITLAB3_TOKEN not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the CLI has not been built
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("gitlab3 binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// Connect opens a library connection to the configured instance
func (config *TestConfig) Connect(t *testing.T) *glclient.Connection {
	t.Helper()

	cfg := &gitlab3.Config{URL: config.URL, Token: config.Token}
	if config.Verbose {
		cfg.Logger = gitlab3.NewZerologLogger(os.Stderr, "debug")
		cfg.Debug = true
	}

	conn, err := glclient.New(context.Background(), cfg)
	require.NoError(t, err)

	return conn
}

// CommandRunner provides utilities for running gitlab3 commands
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a runner with its own empty config file
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: t.TempDir() + "/config.yml",
		t:          t,
	}
}

// Run executes a gitlab3 command against the configured instance
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{
		"--config", runner.configFile,
		"--url", runner.config.URL,
		"--token", runner.config.Token,
	}, args...)

	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a command with JSON output and decodes it
func (runner *CommandRunner) RunJSON(args ...string) (any, error) {
	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, stderr)
	}

	var decoded any

	err = json.Unmarshal([]byte(stdout), &decoded)
	if err != nil {
		return nil, fmt.Errorf("output is not JSON: %w", err)
	}

	return decoded, nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CleanupProject attempts to delete a test project
func CleanupProject(t *testing.T, conn *glclient.Connection, project *glclient.Resource) {
	t.Helper()

	if project == nil {
		return
	}

	err := conn.DeleteResource(context.Background(), "project", project)
	if err != nil {
		t.Logf("Cleanup warning for project %v: %v", project.ID(), err)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}
