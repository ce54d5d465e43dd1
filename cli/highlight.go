package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/roclex/formatter"
	"github.com/robinvdvleuten/roclex/roc"
)

// HighlightCmd renders a Roc source file.
type HighlightCmd struct {
	File        FileOrStdin `help:"Roc input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Format      string      `help:"Output format (${enum})." enum:"terminal,html,json" default:"terminal" env:"ROCLEX_FORMAT"`
	LineNumbers bool        `help:"Prefix every line with its number." short:"n" env:"ROCLEX_LINE_NUMBERS"`
	NoCoalesce  bool        `help:"Keep adjacent tokens of the same kind apart."`
	Stylesheet  bool        `help:"Embed a stylesheet in HTML output."`
	Output      string      `help:"Write to this file instead of stdout." short:"o" type:"path"`
	Force       bool        `help:"Overwrite the output file without asking." short:"f"`
}

func (cmd *HighlightCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := startTelemetry(ctx, globals, fmt.Sprintf("highlight %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	source, err := cmd.File.Source()
	if err != nil {
		return err
	}
	warnUnassociated(ctx.Stderr, cmd.File.Filename)

	mode, err := formatter.ParseMode(cmd.Format)
	if err != nil {
		return err
	}

	opts := []formatter.Option{
		formatter.WithMode(mode),
		formatter.WithCoalesce(!cmd.NoCoalesce),
	}
	if cmd.LineNumbers {
		opts = append(opts, formatter.WithLineNumbers())
	}
	f := formatter.New(opts...)

	var w io.Writer = ctx.Stdout
	if cmd.Output != "" {
		ok, err := cmd.confirmOverwrite()
		if err != nil {
			return err
		}
		if !ok {
			printError(ctx.Stderr, fmt.Sprintf("%s already exists, use --force to overwrite it", cmd.Output))
			return NewCommandError(1)
		}

		file, err := os.Create(cmd.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		w = file
	}

	if cmd.Stylesheet && mode == formatter.ModeHTML {
		if _, err := io.WriteString(w, "<style>\n"); err != nil {
			return err
		}
		if err := formatter.WriteCSS(w, ""); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</style>\n"); err != nil {
			return err
		}
	}

	if err := f.Format(runCtx, roc.NewScanner(cmd.File.Filename, source).All(), w); err != nil {
		return err
	}

	if cmd.Output != "" {
		printSuccess(ctx.Stderr, fmt.Sprintf("Wrote %s", pathStyle.Render(cmd.Output)))
	}

	return nil
}

// confirmOverwrite reports whether the output file may be written.
func (cmd *HighlightCmd) confirmOverwrite() (bool, error) {
	if cmd.Force {
		return true, nil
	}
	if _, err := os.Stat(cmd.Output); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to access output file: %w", err)
	}

	confirmed, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", cmd.Output))
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return confirmed, nil
}
