package environment

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

var testDefaults = []byte(`
LLMSCRIPT_MODEL=${LLMSCRIPT_MODEL:-gpt-4}
LLMSCRIPT_MAX_TOKENS=${LLMSCRIPT_MAX_TOKENS:-500}
LLMSCRIPT_RUNTIME=${LLMSCRIPT_RUNTIME:-python,python3}
`)

func newRunner(t *testing.T, environ []string, rcFiles ...string) *interp.Runner {
	t.Helper()
	runner, err := NewRunner(context.Background(), RunnerOptions{
		Environ:  environ,
		Defaults: testDefaults,
		RcFiles:  rcFiles,
	})
	require.NoError(t, err)
	return runner
}

func writeRcFile(t *testing.T, content string) string {
	t.Helper()
	rcFile := filepath.Join(t.TempDir(), ".llmscriptrc")
	require.NoError(t, os.WriteFile(rcFile, []byte(content), 0644))
	return rcFile
}

func TestLoadConfigDefaults(t *testing.T) {
	runner := newRunner(t, []string{"OPENAI_API_KEY=sk-test"})

	config, err := LoadConfig(runner, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "sk-test", config.Credential)
	assert.Equal(t, DEFAULT_PROMPT, config.Prompt)
	assert.Equal(t, "gpt-4", config.Model)
	assert.Equal(t, 500, config.MaxTokens)
	assert.Equal(t, DEFAULT_BASE_URL, config.BaseURL)
	assert.Nil(t, config.Headers)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
	assert.Equal(t, 30*time.Second, config.ExecTimeout)
	assert.Equal(t, "bitcoin_price_script.py", config.ScriptPath)
	assert.Equal(t, []string{"python", "python3"}, config.RuntimeNames)
}

func TestLoadConfigMissingCredential(t *testing.T) {
	tests := []struct {
		name    string
		environ []string
	}{
		{name: "unset", environ: []string{}},
		{name: "empty", environ: []string{"OPENAI_API_KEY="}},
		{name: "whitespace only", environ: []string{"OPENAI_API_KEY=   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newRunner(t, tt.environ)

			config, err := LoadConfig(runner, zap.NewNop())
			assert.ErrorIs(t, err, ErrMissingCredential)
			assert.Nil(t, config)
		})
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	runner := newRunner(t, []string{
		"OPENAI_API_KEY=sk-env",
		"LLMSCRIPT_MODEL=gpt-4o-mini",
		"LLMSCRIPT_MAX_TOKENS=42",
		"LLMSCRIPT_BASE_URL=http://localhost:11434/v1/",
		"LLMSCRIPT_REQUEST_TIMEOUT=5s",
		"LLMSCRIPT_EXEC_TIMEOUT=90",
		"LLMSCRIPT_SCRIPT_PATH=out/hello.sh",
		"LLMSCRIPT_RUNTIME=bash, sh ,bash",
		"LLMSCRIPT_PROMPT=print hello",
		`LLMSCRIPT_HEADERS={"X-Title":"llmscript"}`,
	})

	config, err := LoadConfig(runner, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", config.Model)
	assert.Equal(t, 42, config.MaxTokens)
	assert.Equal(t, "http://localhost:11434/v1", config.BaseURL)
	assert.Equal(t, 5*time.Second, config.RequestTimeout)
	assert.Equal(t, 90*time.Second, config.ExecTimeout)
	assert.Equal(t, "out/hello.sh", config.ScriptPath)
	assert.Equal(t, []string{"bash", "sh"}, config.RuntimeNames)
	assert.Equal(t, "print hello", config.Prompt)
	assert.Equal(t, map[string]string{"X-Title": "llmscript"}, config.Headers)
}

func TestLoadConfigFromRcFile(t *testing.T) {
	rcFile := writeRcFile(t, `
OPENAI_API_KEY=sk-from-rc
LLMSCRIPT_MODEL=gpt-4-turbo
LLMSCRIPT_RUNTIME=python3
`)
	runner := newRunner(t, []string{"LLMSCRIPT_MODEL=gpt-4o"}, rcFile)

	config, err := LoadConfig(runner, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "sk-from-rc", config.Credential)
	assert.Equal(t, "gpt-4-turbo", config.Model)
	assert.Equal(t, []string{"python3"}, config.RuntimeNames)
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	runner := newRunner(t, []string{
		"OPENAI_API_KEY=sk-test",
		"LLMSCRIPT_MAX_TOKENS=lots",
		"LLMSCRIPT_REQUEST_TIMEOUT=soon",
		"LLMSCRIPT_EXEC_TIMEOUT=-3s",
		"LLMSCRIPT_RUNTIME= , ",
		"LLMSCRIPT_HEADERS=not json",
	})

	config, err := LoadConfig(runner, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, DEFAULT_MAX_TOKENS, config.MaxTokens)
	assert.Equal(t, DEFAULT_TIMEOUT, config.RequestTimeout)
	assert.Equal(t, DEFAULT_TIMEOUT, config.ExecTimeout)
	assert.Equal(t, []string{"python", "python3"}, config.RuntimeNames)
	assert.Nil(t, config.Headers)
}

func TestNewRunnerSkipsMissingAndEmptyRcFiles(t *testing.T) {
	emptyRc := writeRcFile(t, "")
	missingRc := filepath.Join(t.TempDir(), "does-not-exist")

	runner := newRunner(t, []string{"OPENAI_API_KEY=sk-test"}, emptyRc, missingRc)

	credential, err := GetCredential(runner)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", credential)
}

func TestNewRunnerRcFileErrors(t *testing.T) {
	rcFile := writeRcFile(t, "LLMSCRIPT_MODEL=gpt-4o\nfalse_command_that_does_not_exist_42\n")

	t.Run("permissive mode continues", func(t *testing.T) {
		stderr := &bytes.Buffer{}
		runner, err := NewRunner(context.Background(), RunnerOptions{
			Defaults: testDefaults,
			RcFiles:  []string{rcFile},
			Stderr:   stderr,
		})
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", GetModel(runner))
		assert.Contains(t, stderr.String(), "Configuration file "+rcFile+" contains errors")
	})

	t.Run("strict mode aborts", func(t *testing.T) {
		runner, err := NewRunner(context.Background(), RunnerOptions{
			Defaults: testDefaults,
			RcFiles:  []string{rcFile},
			Strict:   true,
		})
		assert.ErrorIs(t, err, ErrConfigFile)
		assert.Nil(t, runner)
	})
}

func TestParseRuntimeNames(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{input: "python,python3", expected: []string{"python", "python3"}},
		{input: " python3 ", expected: []string{"python3"}},
		{input: "node,,node,deno", expected: []string{"node", "deno"}},
		{input: "", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRuntimeNames(tt.input))
		})
	}
}

func TestShouldCleanLogFile(t *testing.T) {
	assert.True(t, ShouldCleanLogFile(newRunner(t, []string{"LLMSCRIPT_CLEAN_LOG_FILE=true"})))
	assert.True(t, ShouldCleanLogFile(newRunner(t, []string{"LLMSCRIPT_CLEAN_LOG_FILE=1"})))
	assert.False(t, ShouldCleanLogFile(newRunner(t, []string{})))
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, GetLogLevel(newRunner(t, []string{"LLMSCRIPT_LOG_LEVEL=debug"})).Level())
	assert.Equal(t, zap.InfoLevel, GetLogLevel(newRunner(t, []string{"LLMSCRIPT_LOG_LEVEL=bogus"})).Level())
}
