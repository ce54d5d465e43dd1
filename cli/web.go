package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/roclex/web"
)

type WebCmd struct {
	File     string `help:"Roc source file to serve." arg:""`
	Host     string `help:"Address to bind to." default:"127.0.0.1" env:"ROCLEX_HOST"`
	Port     int    `help:"Port to listen on." default:"8080" env:"ROCLEX_PORT"`
	Create   bool   `help:"Automatically create file if it doesn't exist (no confirmation prompt)." short:"c"`
	ReadOnly bool   `help:"Enable read-only mode (no write operations allowed)." short:"r"`
	NoWatch  bool   `help:"Do not reload when the file changes on disk."`
}

func (cmd *WebCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry := startTelemetry(ctx, globals, "web")
	defer reportTelemetry()

	sourceFile, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := cmd.ensureFile(ctx, sourceFile); err != nil {
		return err
	}
	warnUnassociated(ctx.Stderr, sourceFile)

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(cmd.Port, sourceFile, version, commitSHA)
	server.Host = cmd.Host
	server.ReadOnly = cmd.ReadOnly
	server.WatchEnabled = !cmd.NoWatch

	printInfof(ctx.Stdout, "Starting server on http://%s:%d", server.Host, cmd.Port)
	printInfof(ctx.Stdout, "Serving source: %s", pathStyle.Render(sourceFile))

	if cmd.ReadOnly {
		printInfof(ctx.Stdout, "Server running in READ-ONLY mode")
	}

	runCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	return server.Start(runCtx)
}

// ensureFile creates sourceFile when it is missing and creation is
// allowed or confirmed.
func (cmd *WebCmd) ensureFile(ctx *kong.Context, sourceFile string) error {
	_, err := os.Stat(sourceFile)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access file: %w", err)
	}

	shouldCreate := cmd.Create
	if !shouldCreate {
		confirmed, err := promptYesNo(fmt.Sprintf("File %q does not exist. Create it?", sourceFile))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		shouldCreate = confirmed
	}

	if !shouldCreate {
		return fmt.Errorf("file does not exist: %s", sourceFile)
	}

	if err := os.MkdirAll(filepath.Dir(sourceFile), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := os.WriteFile(sourceFile, []byte(""), 0600); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	printInfof(ctx.Stdout, "Created empty source file: %s", pathStyle.Render(sourceFile))
	return nil
}
