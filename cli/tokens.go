package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/roclex/lexer"
	"github.com/robinvdvleuten/roclex/output"
	"github.com/robinvdvleuten/roclex/roc"
	"github.com/robinvdvleuten/roclex/telemetry"
)

// TokensCmd lists the tokens of a Roc source file.
type TokensCmd struct {
	File     FileOrStdin `help:"Roc input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Coalesce bool        `help:"Merge adjacent tokens of the same kind." env:"ROCLEX_COALESCE"`
	Repr     bool        `help:"Dump the tokens as Go values."`
}

func (cmd *TokensCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := startTelemetry(ctx, globals, fmt.Sprintf("tokens %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	source, err := cmd.File.Source()
	if err != nil {
		return err
	}
	warnUnassociated(ctx.Stderr, cmd.File.Filename)

	tokens := scanTokens(runCtx, cmd.File.Filename, source, cmd.Coalesce)

	if cmd.Repr {
		repr.New(ctx.Stdout).Println(tokens)
		return nil
	}

	writeTokenTable(ctx.Stdout, tokens, output.NewStyles(ctx.Stdout))
	return nil
}

// scanTokens tokenizes source in full, recording the time it took.
func scanTokens(ctx context.Context, filename, source string, coalesce bool) []lexer.Token {
	timer := telemetry.FromContext(ctx).Start("tokenize")
	defer timer.End()

	seq := roc.NewScanner(filename, source).All()
	if coalesce {
		seq = lexer.Coalesce(seq)
	}

	var tokens []lexer.Token
	for tok := range seq {
		tokens = append(tokens, tok)
	}
	timer.Tokens(len(tokens))

	return tokens
}

// writeTokenTable prints one `KIND line:col "text"` row per token with
// the first two columns aligned.
func writeTokenTable(w io.Writer, tokens []lexer.Token, styles *output.Styles) {
	kindWidth, posWidth := 0, 0
	for _, tok := range tokens {
		kindWidth = max(kindWidth, runewidth.StringWidth(tok.Kind.String()))
		posWidth = max(posWidth, runewidth.StringWidth(position(tok)))
	}

	for _, tok := range tokens {
		kind := styles.Kind(runewidth.FillRight(tok.Kind.String(), kindWidth))
		if tok.Kind == lexer.Error {
			kind = styles.Error(runewidth.FillRight(tok.Kind.String(), kindWidth))
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
			kind,
			styles.Position(runewidth.FillRight(position(tok), posWidth)),
			strconv.Quote(tok.Text),
		)
	}
}

func position(tok lexer.Token) string {
	return fmt.Sprintf("%d:%d", tok.Pos.Line, tok.Pos.Column)
}
