package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostsync/config"
	"github.com/wippyai/hostsync/scenario"
	"github.com/wippyai/hostsync/system"
	"github.com/wippyai/hostsync/wasmhost"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML configuration")
		name        = flag.String("scenario", "", "Scenario to run (default: all)")
		list        = flag.Bool("list", false, "List scenarios and exit")
		wasmFile    = flag.String("wasm", "", "Guest module importing the hostsync host module")
		funcName    = flag.String("func", "run", "Guest function to call with -wasm")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if *list {
		for _, sc := range scenario.All() {
			fmt.Printf("  %-18s %s\n", sc.Name, sc.Description)
		}
		return
	}

	cfg, err := loadConfig(*configFile, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal on stdout")
			os.Exit(1)
		}
		// The TUI owns the screen; keep log output off it.
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	system.SetLogger(log.Named("system"))
	wasmhost.SetLogger(log.Named("wasmhost"))

	if *wasmFile != "" {
		err = runGuest(cfg, log, *wasmFile, *funcName)
	} else {
		err = runScenarios(cfg, *name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string, verbose bool) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newSystem(cfg *config.Config) (*system.System, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return system.New(opts)
}

func runScenarios(cfg *config.Config, name string) error {
	selected := scenario.All()
	if name != "" {
		sc, ok := scenario.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown scenario %q (have %v)", name, scenario.Names())
		}
		selected = []scenario.Scenario{sc}
	}

	sys, err := newSystem(cfg)
	if err != nil {
		return err
	}
	defer sys.Dispose()

	ctx := context.Background()
	for _, sc := range selected {
		fmt.Printf("== %s: %s\n", sc.Name, sc.Description)
		begin := time.Now()
		err := sc.Run(ctx, sys, func(line string) {
			fmt.Printf("   %s\n", line)
		})
		if err != nil {
			return fmt.Errorf("%s: %w", sc.Name, err)
		}
		fmt.Printf("   ok (%s)\n", time.Since(begin).Round(time.Millisecond))
	}
	return nil
}

func runGuest(cfg *config.Config, log *zap.Logger, wasmFile, funcName string) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	sys, err := newSystem(cfg)
	if err != nil {
		return err
	}
	defer sys.Dispose()

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if _, err := wasmhost.Instantiate(ctx, rt, sys, wasmhost.Options{}); err != nil {
		return err
	}

	mod, err := rt.Instantiate(ctx, data)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(funcName)
	if fn == nil {
		return fmt.Errorf("guest does not export %q", funcName)
	}

	fmt.Printf("Calling %s()...\n", funcName)
	results, err := fn.Call(ctx)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	fmt.Printf("Result: %v\n", results)

	for typ, n := range sys.Live() {
		log.Debug("live after guest call", zap.Stringer("type", typ), zap.Int("count", n))
	}
	return nil
}
