package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-stack/binding"
	"github.com/wippyai/wasm-stack/engine"
	"github.com/wippyai/wasm-stack/runtime"
	"github.com/wippyai/wasm-stack/stack"
)

func main() {
	var (
		capacity     = flag.Int("capacity", stack.DefaultCapacity, "Capacity of every stack")
		moduleName   = flag.String("module", binding.DefaultModuleName, "Host module name guests import from")
		wasmFile     = flag.String("wasm", "", "Path to a core wasm module importing the stack module")
		funcName     = flag.String("func", "", "Function to call (optional)")
		witFile      = flag.String("wit", "", "WIT file declaring the module's exported functions")
		args         = flag.String("args", "", "Function arguments (comma-separated)")
		list         = flag.Bool("list", false, "List exported functions and exit")
		timeout      = flag.Duration("timeout", 0, "Abort the guest call after this long (0 = no limit)")
		describeOnly = flag.Bool("describe", false, "Print the host functions and exit")
		script       = flag.String("script", "", "Run stack commands from a file (- for stdin)")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
		logLevel     = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stack [-capacity N] [-module name]                (shell, TUI on a terminal)")
		fmt.Fprintln(os.Stderr, "       stack -script <file|->                            (run commands)")
		fmt.Fprintln(os.Stderr, "       stack -wasm <file.wasm> [-wit f.wit] [-func name] [-args a,b] [-timeout d]")
		fmt.Fprintln(os.Stderr, "       stack -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       stack -describe")
		flag.PrintDefaults()
	}
	flag.Parse()

	log, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	cfg := runtime.DefaultConfig()
	cfg.Binding.Capacity = *capacity
	cfg.Binding.ModuleName = *moduleName
	cfg.Binding.Logger = log.Named("binding")
	cfg.Engine.CloseOnContextDone = *timeout > 0

	opts := options{
		guest: guestOptions{
			wasmFile: *wasmFile,
			witFile:  *witFile,
			funcName: *funcName,
			args:     *args,
			list:     *list,
			timeout:  *timeout,
		},
		script:      *script,
		describe:    *describeOnly,
		interactive: *interactive,
	}

	if err := run(context.Background(), cfg, opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	script      string
	guest       guestOptions
	describe    bool
	interactive bool
}

func run(ctx context.Context, cfg runtime.Config, opts options, stdin io.Reader, stdout io.Writer) error {
	rt, err := runtime.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	sh := newShell(rt.Stacks())

	switch {
	case opts.describe:
		_, err := fmt.Fprintln(stdout, describe(rt.Stacks()))
		return err

	case opts.guest.wasmFile != "":
		return runGuest(ctx, rt, opts.guest, stdout)

	case opts.script != "" && opts.script != "-":
		f, err := os.Open(opts.script)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		return sh.Run(f, stdout)

	case opts.interactive || (opts.script == "" && isTerminal(stdin)):
		return runInteractive(sh)
	}

	return sh.Run(stdin, stdout)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newLogger builds a console logger on stderr and installs it as the
// package logger of engine, binding and runtime.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	zcfg.Encoding = "console"
	zcfg.Sampling = nil
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	engine.SetLogger(log.Named("engine"))
	binding.SetLogger(log.Named("binding"))
	runtime.SetLogger(log.Named("runtime"))
	return log, nil
}
