package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/roclex/lexer"
)

type CheckCmd struct {
	File FileOrStdin `help:"Roc input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := startTelemetry(ctx, globals, fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	source, err := cmd.File.Source()
	if err != nil {
		return err
	}
	warnUnassociated(ctx.Stderr, cmd.File.Filename)

	var errs []lexer.Token
	for _, tok := range scanTokens(runCtx, cmd.File.Filename, source, true) {
		if tok.Kind == lexer.Error {
			errs = append(errs, tok)
		}
	}

	if len(errs) > 0 {
		renderer := NewErrorRenderer(source)
		_, _ = fmt.Fprint(ctx.Stderr, renderer.RenderAll(errs))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d unrecognised token(s) found", len(errs)))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, "Check passed")

	return nil
}
