// Package pipeline drives one run: request a completion, write it to disk,
// run it, and report what happened. Every stage stops the run on failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/robottwo/llmscript/internal/environment"
	"github.com/robottwo/llmscript/internal/filesystem"
	"github.com/robottwo/llmscript/internal/script"
	"go.uber.org/zap"
)

type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ScriptRunner interface {
	Run(ctx context.Context, interpreter string, scriptPath string) (*script.Result, error)
}

type Pipeline struct {
	Config    *environment.Config
	Completer Completer
	FS        filesystem.FileSystem
	Resolver  script.RuntimeResolver
	Executor  ScriptRunner
	Reporter  *Reporter
	Logger    *zap.Logger
}

// Outcome records how far a run got. Fields for stages that never ran are
// left zero.
type Outcome struct {
	Script      string
	ScriptPath  string
	Interpreter string
	Result      *script.Result
	// Output is the reported text: stdout on success, stderr otherwise,
	// without trailing line breaks.
	Output string
}

// Run executes the stages in order. Recoverable failures are reported
// before returning; fatal ones (see IsFatal) are returned unreported so
// the caller decides how to terminate.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{}

	if p.Config == nil || strings.TrimSpace(p.Config.Credential) == "" {
		return outcome, environment.ErrMissingCredential
	}

	p.Logger.Info("generating script", zap.String("model", p.Config.Model))
	text, err := p.Completer.Generate(ctx, p.Config.Prompt)
	if err != nil {
		if Classify(err) == KindEmpty {
			p.Reporter.Warn("Warning: empty completion response")
		} else {
			p.Reporter.Error(fmt.Sprintf("Error making completion request: %s", err))
		}
		return outcome, err
	}
	outcome.Script = text

	scriptPath, err := script.ResolvePath(p.Config.ScriptPath)
	if err != nil {
		p.Reporter.Error(fmt.Sprintf("Error writing script to file: %s", err))
		return outcome, err
	}
	if err := script.Write(p.FS, scriptPath, text); err != nil {
		p.Logger.Error("failed to write script", zap.String("path", scriptPath), zap.Error(err))
		p.Reporter.Error(fmt.Sprintf("Error writing script to file: %s", err))
		return outcome, err
	}
	outcome.ScriptPath = scriptPath
	p.Logger.Info("script written", zap.String("path", scriptPath), zap.String("size", humanize.Bytes(uint64(len(text)))))
	p.Reporter.Info(fmt.Sprintf("Script generated: %s", scriptPath))

	interpreter, err := p.Resolver.Resolve()
	if err != nil {
		p.Logger.Error("no interpreter available", zap.Error(err))
		return outcome, err
	}
	outcome.Interpreter = interpreter

	result, err := p.Executor.Run(ctx, interpreter, scriptPath)
	outcome.Result = result
	if err != nil {
		if errors.Is(err, script.ErrTimeout) {
			p.Reporter.Error(fmt.Sprintf("Error: %s", err))
		} else {
			p.Reporter.Error(fmt.Sprintf("Error executing script: %s", err))
		}
		return outcome, err
	}

	if !result.Succeeded() {
		outcome.Output = strings.TrimRight(result.Stderr, "\r\n")
		p.Reporter.Error(fmt.Sprintf("Error running script (exit code %d):", result.ExitCode))
		p.Reporter.Output(result.Stderr)
		return outcome, fmt.Errorf("%w: exit code %d", ErrExitStatus, result.ExitCode)
	}

	outcome.Output = strings.TrimRight(result.Stdout, "\r\n")
	p.Reporter.Success("Script executed successfully:")
	p.Reporter.Output(result.Stdout)
	p.Logger.Info("run complete", zap.Duration("duration", result.Duration))
	return outcome, nil
}
