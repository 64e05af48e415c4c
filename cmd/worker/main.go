package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/classified-extractor/app/config"
	"github.com/classified-extractor/app/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Logger used by every service. Built from APP_ENV when nil.
	Logger *zap.Logger
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("worker"),
		kong.Description("Batch extraction of addresses and wages from classified ads."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'worker --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if m.Logger == nil {
		if m.Logger, err = newLogger(); err != nil {
			return err
		}
		defer m.Logger.Sync()
	}
	deps.Logger = m.Logger

	// merge only moves files; the other commands need the reference tables.
	if !strings.HasPrefix(kongCtx.Command(), "merge") {
		cfg, err := config.LoadOrDefault(cli.Config)
		if err != nil {
			return err
		}
		deps.Config = cfg
		if deps.Reference, err = services.LoadReference(cfg, m.Logger); err != nil {
			return err
		}
		tn, err := services.BuildNormalizer(cfg, m.Logger)
		if err != nil {
			return err
		}
		if deps.Extractor, err = services.NewExtractService(deps.Reference, tn, cfg, nil, m.Logger); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
