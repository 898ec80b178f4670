package pipeline

import (
	"errors"

	"github.com/robottwo/llmscript/internal/environment"
	"github.com/robottwo/llmscript/internal/generate"
	"github.com/robottwo/llmscript/internal/script"
)

// ErrExitStatus is returned when the generated script ran to completion
// with a non-zero exit code.
var ErrExitStatus = errors.New("script exited with non-zero status")

type Kind int

const (
	KindNone Kind = iota
	KindConfig
	KindTransport
	KindEmpty
	KindWrite
	KindEnvironment
	KindTimeout
	KindExitStatus
	KindExec
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindEmpty:
		return "empty"
	case KindWrite:
		return "write"
	case KindEnvironment:
		return "environment"
	case KindTimeout:
		return "timeout"
	case KindExitStatus:
		return "exit_status"
	default:
		return "exec"
	}
}

func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, environment.ErrMissingCredential), errors.Is(err, environment.ErrConfigFile):
		return KindConfig
	case errors.Is(err, generate.ErrEmptyCompletion):
		return KindEmpty
	case errors.Is(err, generate.ErrTransport):
		return KindTransport
	case errors.Is(err, script.ErrWrite):
		return KindWrite
	case errors.Is(err, script.ErrRuntimeNotFound):
		return KindEnvironment
	case errors.Is(err, script.ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrExitStatus):
		return KindExitStatus
	default:
		return KindExec
	}
}

// IsFatal reports whether the kind stems from a broken setup rather than
// from this particular run.
func IsFatal(kind Kind) bool {
	return kind == KindConfig || kind == KindEnvironment
}

// ExitCode maps a run error to the process exit code: 0 on success, 2 for
// fatal setup problems and 1 for every other failure.
func ExitCode(err error) int {
	kind := Classify(err)
	switch {
	case kind == KindNone:
		return 0
	case IsFatal(kind):
		return 2
	default:
		return 1
	}
}
