package environment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robottwo/llmscript/internal/bash"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

const (
	DEFAULT_BASE_URL    = "https://api.openai.com/v1"
	DEFAULT_MODEL       = "gpt-4"
	DEFAULT_MAX_TOKENS  = 500
	DEFAULT_TIMEOUT     = 30 * time.Second
	DEFAULT_SCRIPT_PATH = "bitcoin_price_script.py"
	DEFAULT_RUNTIME     = "python,python3"

	DEFAULT_PROMPT = "Generate a Python script that fetches the bitcoin price from Gemini API - " +
		"just give the code, so it can be run, no smalltalk! - no comments like " +
		"'Here's a simple Python script that imports the `requests` library to send HTTP " +
		"requests and fetch the latest Bitcoin price from the Gemini API:' - " +
		"never respond with the code in ``` backticks. Only ever return pure code, no text before or after!!!"
)

const credentialVar = "OPENAI_API_KEY"

var (
	ErrMissingCredential = errors.New(credentialVar + " not set in environment")
	ErrConfigFile        = errors.New("configuration file contains errors")
)

// Config is everything a single run needs, resolved once up front.
type Config struct {
	Credential     string
	Prompt         string
	Model          string
	MaxTokens      int
	BaseURL        string
	Headers        map[string]string
	RequestTimeout time.Duration
	ExecTimeout    time.Duration
	ScriptPath     string
	RuntimeNames   []string
}

type RunnerOptions struct {
	Environ  []string
	Defaults []byte
	RcFiles  []string
	Strict   bool
	Stdout   io.Writer
	Stderr   io.Writer
}

// NewRunner sources the default variables and then each rc file into a
// fresh interpreter. Variables from Environ are visible to both.
func NewRunner(ctx context.Context, opts RunnerOptions) (*interp.Runner, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(opts.Environ...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return nil, err
	}

	if err := bash.RunBashScriptFromReader(ctx, runner, bytes.NewReader(opts.Defaults), "llmscript"); err != nil {
		return nil, fmt.Errorf("failed to load default configuration: %w", err)
	}

	for _, rcFile := range opts.RcFiles {
		stat, err := os.Stat(rcFile)
		if err != nil || stat.Size() == 0 {
			continue
		}
		if err := bash.RunBashScriptFromFile(ctx, runner, rcFile); err != nil {
			fmt.Fprintf(stderr, "Configuration file %s contains errors: %v\n", rcFile, err)
			if opts.Strict {
				return nil, fmt.Errorf("%w: %s: %w", ErrConfigFile, rcFile, err)
			}
		}
	}

	return runner, nil
}

// LoadConfig reads every setting from the runner. The only error it returns
// is ErrMissingCredential; malformed optional values fall back to defaults.
func LoadConfig(runner *interp.Runner, logger *zap.Logger) (*Config, error) {
	credential, err := GetCredential(runner)
	if err != nil {
		return nil, err
	}

	return &Config{
		Credential:     credential,
		Prompt:         GetPrompt(runner),
		Model:          GetModel(runner),
		MaxTokens:      GetMaxTokens(runner, logger),
		BaseURL:        GetBaseURL(runner),
		Headers:        GetHeaders(runner, logger),
		RequestTimeout: GetRequestTimeout(runner, logger),
		ExecTimeout:    GetExecTimeout(runner, logger),
		ScriptPath:     GetScriptPath(runner),
		RuntimeNames:   GetRuntimeNames(runner),
	}, nil
}

func GetCredential(runner *interp.Runner) (string, error) {
	credential := strings.TrimSpace(runner.Vars[credentialVar].String())
	if credential == "" {
		return "", ErrMissingCredential
	}
	return credential, nil
}

func GetPrompt(runner *interp.Runner) string {
	prompt := runner.Vars["LLMSCRIPT_PROMPT"].String()
	if strings.TrimSpace(prompt) == "" {
		return DEFAULT_PROMPT
	}
	return prompt
}

func GetModel(runner *interp.Runner) string {
	model := strings.TrimSpace(runner.Vars["LLMSCRIPT_MODEL"].String())
	if model == "" {
		return DEFAULT_MODEL
	}
	return model
}

func GetBaseURL(runner *interp.Runner) string {
	baseURL := strings.TrimSpace(runner.Vars["LLMSCRIPT_BASE_URL"].String())
	if baseURL == "" {
		return DEFAULT_BASE_URL
	}
	return strings.TrimRight(baseURL, "/")
}

func GetMaxTokens(runner *interp.Runner, logger *zap.Logger) int {
	maxTokens, err := strconv.ParseInt(
		strings.TrimSpace(runner.Vars["LLMSCRIPT_MAX_TOKENS"].String()), 10, 32)
	if err != nil || maxTokens <= 0 {
		logger.Debug("error parsing LLMSCRIPT_MAX_TOKENS", zap.Error(err))
		maxTokens = DEFAULT_MAX_TOKENS
	}
	return int(maxTokens)
}

func GetRequestTimeout(runner *interp.Runner, logger *zap.Logger) time.Duration {
	return getDuration(runner, logger, "LLMSCRIPT_REQUEST_TIMEOUT")
}

func GetExecTimeout(runner *interp.Runner, logger *zap.Logger) time.Duration {
	return getDuration(runner, logger, "LLMSCRIPT_EXEC_TIMEOUT")
}

// getDuration accepts Go durations ("45s", "2m") or a bare number of seconds.
func getDuration(runner *interp.Runner, logger *zap.Logger, key string) time.Duration {
	value := strings.TrimSpace(runner.Vars[key].String())
	if value == "" {
		return DEFAULT_TIMEOUT
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		logger.Debug("error parsing "+key, zap.String("value", value), zap.Error(err))
		return DEFAULT_TIMEOUT
	}
	return duration
}

func GetScriptPath(runner *interp.Runner) string {
	scriptPath := strings.TrimSpace(runner.Vars["LLMSCRIPT_SCRIPT_PATH"].String())
	if scriptPath == "" {
		return DEFAULT_SCRIPT_PATH
	}
	return scriptPath
}

func GetRuntimeNames(runner *interp.Runner) []string {
	names := ParseRuntimeNames(runner.Vars["LLMSCRIPT_RUNTIME"].String())
	if len(names) == 0 {
		return ParseRuntimeNames(DEFAULT_RUNTIME)
	}
	return names
}

// ParseRuntimeNames splits a comma separated interpreter list, keeping order.
func ParseRuntimeNames(value string) []string {
	names := lo.Map(strings.Split(value, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(names))
}

func GetHeaders(runner *interp.Runner, logger *zap.Logger) map[string]string {
	raw := strings.TrimSpace(runner.Vars["LLMSCRIPT_HEADERS"].String())
	if raw == "" {
		return nil
	}

	var headers map[string]string
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		logger.Warn("error parsing LLMSCRIPT_HEADERS", zap.Error(err))
		return nil
	}
	return headers
}

func GetLogLevel(runner *interp.Runner) zap.AtomicLevel {
	logLevel, err := zap.ParseAtomicLevel(runner.Vars["LLMSCRIPT_LOG_LEVEL"].String())
	if err != nil {
		logLevel = zap.NewAtomicLevel()
	}
	return logLevel
}

func ShouldCleanLogFile(runner *interp.Runner) bool {
	cleanLogFile := strings.ToLower(runner.Vars["LLMSCRIPT_CLEAN_LOG_FILE"].String())
	return cleanLogFile == "1" || cleanLogFile == "true"
}
