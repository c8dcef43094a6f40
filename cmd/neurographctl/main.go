package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"neurograph/internal/command"
	"neurograph/internal/config"
	"neurograph/internal/engine"
	"neurograph/internal/logging"
	"neurograph/internal/storage"
	"neurograph/pkg/neurograph"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:], out)
	case "run":
		return runRun(ctx, args[1:], out)
	case "exec":
		return runExec(ctx, args[1:], out)
	case "state":
		return runState(ctx, args[1:], out)
	case "save":
		return runSave(ctx, args[1:], out)
	case "load":
		return runLoad(ctx, args[1:], out)
	case "list":
		return runList(ctx, args[1:], out)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// commonFlags registers the flags every subcommand shares and returns a
// loader that folds them over the optional YAML config.
func commonFlags(fs *flag.FlagSet) func() (*config.Config, error) {
	configPath := fs.String("config", "", "optional YAML config file")
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "", "sqlite database path")
	logLevel := fs.String("log-level", "", "log level: error|warn|info|debug")

	return func() (*config.Config, error) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		if *storeKind != "" {
			cfg.Store.Kind = *storeKind
		}
		if *dbPath != "" {
			cfg.Store.Path = *dbPath
		}
		if *logLevel != "" {
			cfg.Logging.Level = *logLevel
		}
		return cfg, cfg.Validate()
	}
}

func newClient(ctx context.Context, cfg *config.Config) (*neurograph.Client, error) {
	client, err := neurograph.New(neurograph.Options{
		StoreKind: cfg.Store.Kind,
		DBPath:    cfg.Store.Path,
		Logger:    logging.NewLogger(cfg.Logging.Level, os.Stderr),
		ApplySTDP: cfg.Simulation.ApplySTDP,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runInit(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	load := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	store, err := storage.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "initialized store=%s\n", cfg.Store.Kind)
	return nil
}

func runRun(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	load := commonFlags(fs)
	networkPath := fs.String("network", "", "network description JSON file")
	steps := fs.Int("steps", 1, "number of simulation steps")
	dt := fs.Float64("dt", 0, "time step (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *networkPath == "" {
		return usageError("run: -network is required")
	}
	cfg, err := load()
	if err != nil {
		return err
	}
	if *dt <= 0 {
		*dt = cfg.Simulation.DT
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	nf, err := LoadNetworkFile(*networkPath)
	if err != nil {
		return err
	}
	if err := nf.Build(client); err != nil {
		return err
	}

	outputs, err := client.Run(*steps, *dt)
	if err != nil {
		return err
	}
	return json.NewEncoder(out).Encode(outputs)
}

// runExec executes a command-envelope script: one JSON request per line,
// one JSON response per line.
func runExec(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	load := commonFlags(fs)
	scriptPath := fs.String("script", "", "command script file (JSON lines)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scriptPath == "" {
		return usageError("exec: -script is required")
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	file, err := os.Open(*scriptPath)
	if err != nil {
		return fmt.Errorf("opening script: %w", err)
	}
	defer file.Close()

	eng := engine.New(engine.Config{
		Logger:    logging.NewLogger(cfg.Logging.Level, os.Stderr),
		ApplySTDP: cfg.Simulation.ApplySTDP,
	})
	if err := eng.Init(); err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		req, err := command.Decode(text)
		if err != nil {
			return fmt.Errorf("script line %d: %w", line, err)
		}
		if err := encoder.Encode(command.Execute(eng, req)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runState(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("state", flag.ContinueOnError)
	load := commonFlags(fs)
	name := fs.String("name", "", "saved network name")
	id := fs.Uint("id", 0, "neuron ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return usageError("state: -name is required")
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ok, err := client.LoadNetwork(ctx, *name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("network %q not found", *name)
	}
	state, err := client.NeuronState(uint32(*id))
	if err != nil {
		return err
	}
	return json.NewEncoder(out).Encode(state)
}

func runSave(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	load := commonFlags(fs)
	networkPath := fs.String("network", "", "network description JSON file")
	name := fs.String("name", "", "name to save under")
	steps := fs.Int("steps", 0, "steps to run before saving")
	dt := fs.Float64("dt", 0, "time step (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *networkPath == "" || *name == "" {
		return usageError("save: -network and -name are required")
	}
	cfg, err := load()
	if err != nil {
		return err
	}
	if *dt <= 0 {
		*dt = cfg.Simulation.DT
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	nf, err := LoadNetworkFile(*networkPath)
	if err != nil {
		return err
	}
	if err := nf.Build(client); err != nil {
		return err
	}
	if *steps > 0 {
		if _, err := client.Run(*steps, *dt); err != nil {
			return err
		}
	}
	if err := client.SaveNetwork(ctx, *name); err != nil {
		return err
	}

	fmt.Fprintf(out, "saved network=%s store=%s\n", *name, cfg.Store.Kind)
	return nil
}

func runLoad(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	load := commonFlags(fs)
	name := fs.String("name", "", "saved network name")
	steps := fs.Int("steps", 0, "steps to run after loading")
	dt := fs.Float64("dt", 0, "time step (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return usageError("load: -name is required")
	}
	cfg, err := load()
	if err != nil {
		return err
	}
	if *dt <= 0 {
		*dt = cfg.Simulation.DT
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ok, err := client.LoadNetwork(ctx, *name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("network %q not found", *name)
	}

	if *steps > 0 {
		outputs, err := client.Run(*steps, *dt)
		if err != nil {
			return err
		}
		return json.NewEncoder(out).Encode(outputs)
	}
	fmt.Fprintf(out, "loaded network=%s clock=%g\n", *name, client.Clock())
	return nil
}

func runList(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	load := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	names, err := client.ListNetworks(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: neurographctl <init|run|exec|state|save|load|list> [flags]", msg)
}
