package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/robottwo/llmscript/internal/core"
	"github.com/robottwo/llmscript/internal/environment"
	"github.com/robottwo/llmscript/internal/filesystem"
	"github.com/robottwo/llmscript/internal/generate"
	"github.com/robottwo/llmscript/internal/pipeline"
	"github.com/robottwo/llmscript/internal/script"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/interp"
)

var BUILD_VERSION = "dev"

//go:embed .llmscriptrc.default
var DEFAULT_VARS []byte

var rcFile = flag.String("rcfile", "", "use a custom rc file instead of ~/.llmscriptrc")
var strictConfig = flag.Bool("strict-config", false, "fail fast if the rc file contains errors")

var promptFlag = flag.String("prompt", "", "instruction sent to the model (overrides LLMSCRIPT_PROMPT)")
var modelFlag = flag.String("model", "", "model identifier (overrides LLMSCRIPT_MODEL)")
var maxTokensFlag = flag.Int("max-tokens", 0, "completion token limit (overrides LLMSCRIPT_MAX_TOKENS)")
var outFlag = flag.String("out", "", "file the generated script is written to (overrides LLMSCRIPT_SCRIPT_PATH)")
var runtimeFlag = flag.String("runtime", "", "comma separated interpreters to search for (overrides LLMSCRIPT_RUNTIME)")
var timeoutFlag = flag.Duration("timeout", 0, "request and execution timeout (overrides both LLMSCRIPT_*_TIMEOUT)")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Println("Usage of llmscript:")
		flag.PrintDefaults()
		return
	}

	ctx := context.Background()
	reporter := pipeline.NewReporter(os.Stdout, os.Stderr, term.IsTerminal(int(os.Stdout.Fd())))

	runner, err := initializeRunner(ctx)
	if err != nil {
		reporter.Fatal(err)
		os.Exit(pipeline.ExitCode(err))
	}

	logger, err := initializeLogger(runner)
	if err != nil {
		panic(err)
	}

	logger.Info("-------- new llmscript run --------", zap.Any("args", os.Args), zap.String("version", BUILD_VERSION))

	code := run(ctx, runner, logger, reporter)

	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, runner *interp.Runner, logger *zap.Logger, reporter *pipeline.Reporter) int {
	config, err := environment.LoadConfig(runner, logger)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		reporter.Fatal(err)
		return pipeline.ExitCode(err)
	}
	applyFlagOverrides(config)

	p := &pipeline.Pipeline{
		Config:    config,
		Completer: generate.NewGenerator(config, logger),
		FS:        filesystem.DefaultFileSystem{},
		Resolver:  script.NewPathResolver(config.RuntimeNames...),
		Executor:  script.NewExecutor(config.ExecTimeout, logger),
		Reporter:  reporter,
		Logger:    logger,
	}

	_, err = p.Run(ctx)
	if err != nil {
		kind := pipeline.Classify(err)
		if pipeline.IsFatal(kind) {
			logger.Error("run aborted", zap.Stringer("kind", kind), zap.Error(err))
			reporter.Fatal(err)
		} else {
			logger.Warn("run ended early", zap.Stringer("kind", kind), zap.Error(err))
		}
	}

	return pipeline.ExitCode(err)
}

func applyFlagOverrides(config *environment.Config) {
	if *promptFlag != "" {
		config.Prompt = *promptFlag
	}
	if *modelFlag != "" {
		config.Model = *modelFlag
	}
	if *maxTokensFlag > 0 {
		config.MaxTokens = *maxTokensFlag
	}
	if *outFlag != "" {
		config.ScriptPath = *outFlag
	}
	if names := environment.ParseRuntimeNames(*runtimeFlag); len(names) > 0 {
		config.RuntimeNames = names
	}
	if *timeoutFlag > 0 {
		config.RequestTimeout = *timeoutFlag
		config.ExecTimeout = *timeoutFlag
	}
}

func initializeLogger(runner *interp.Runner) (*zap.Logger, error) {
	logLevel := environment.GetLogLevel(runner)
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if environment.ShouldCleanLogFile(runner) {
		_ = os.Remove(core.LogFile())
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}
	loggerConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return loggerConfig.Build()
}

// initializeRunner loads the default variables and the user's rc file.
func initializeRunner(ctx context.Context) (*interp.Runner, error) {
	rcFiles := []string{core.RcFile()}
	if *rcFile != "" {
		rcFiles = []string{*rcFile}
	}

	return environment.NewRunner(ctx, environment.RunnerOptions{
		Environ:  os.Environ(),
		Defaults: DEFAULT_VARS,
		RcFiles:  rcFiles,
		Strict:   *strictConfig,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	})
}
