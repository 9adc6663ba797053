package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// version is set by the build via -ldflags.
var version = "dev"

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("rival"),
		kong.Description("Analyze competitor product and pricing pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:     ctx,
		Config:  ConfigFromEnv(),
		Stdout:  stdout,
		Stderr:  stderr,
		Logger:  slog.New(slog.NewTextHandler(stderr, nil)),
		Version: version,
	}

	return kctx.Run(deps)
}
