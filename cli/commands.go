package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations." env:"ROCLEX_TELEMETRY"`
}

type Commands struct {
	Globals

	Tokens    TokensCmd    `cmd:"" help:"List the tokens of a Roc source file."`
	Highlight HighlightCmd `cmd:"" help:"Render a Roc source file with syntax highlighting."`
	Check     CheckCmd     `cmd:"" help:"Report text in a Roc source file that no rule recognises."`
	Web       WebCmd       `cmd:"" help:"Start a web server that highlights a Roc source file."`
}
