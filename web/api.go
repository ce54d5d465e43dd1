package web

import (
	"encoding/json"
	"net/http"

	"github.com/robinvdvleuten/roclex/formatter"
	"github.com/robinvdvleuten/roclex/lexer"
	"github.com/robinvdvleuten/roclex/roc"
	"github.com/robinvdvleuten/roclex/telemetry"
)

// TokenError locates text no rule recognised.
type TokenError struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

func newTokenError(tok lexer.Token) TokenError {
	return TokenError{
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column,
		Offset: tok.Pos.Offset,
		Text:   tok.Text,
	}
}

type LexerResponse struct {
	lexer.Config
	States    []string `json:"states"`
	Kinds     []string `json:"kinds"`
	Version   string   `json:"version"`
	CommitSHA string   `json:"commitSHA"`
}

// handleGetLexer handles GET requests to /api/lexer.
func (s *Server) handleGetLexer(w http.ResponseWriter, r *http.Request) {
	table := roc.Table()

	kinds := make([]string, 0, len(lexer.Kinds()))
	for _, kind := range lexer.Kinds() {
		kinds = append(kinds, kind.String())
	}

	writeJSONResponse(w, &LexerResponse{
		Config:    table.Config(),
		States:    table.States(),
		Kinds:     kinds,
		Version:   s.Version,
		CommitSHA: s.CommitSHA,
	})
}

type TokenizeRequest struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
	Coalesce bool   `json:"coalesce"`
}

type TokenizeResponse struct {
	Tokens []formatter.JSONToken `json:"tokens"`
	Errors []TokenError          `json:"errors"`
}

// handleTokenize handles POST requests to /api/tokenize.
// Tokenizes the posted source without touching the file system.
func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var request TokenizeRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxSourceSize)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	timer := telemetry.FromContext(r.Context()).Start("web.tokenize request")
	defer timer.End()

	tokens := roc.NewScanner(request.Filename, request.Source).All()
	if request.Coalesce {
		tokens = lexer.Coalesce(tokens)
	}

	response := &TokenizeResponse{
		Tokens: []formatter.JSONToken{},
		Errors: []TokenError{},
	}
	for tok := range tokens {
		response.Tokens = append(response.Tokens, formatter.NewJSONToken(tok))
		if tok.Kind == lexer.Error {
			response.Errors = append(response.Errors, newTokenError(tok))
		}
	}
	timer.Tokens(len(response.Tokens))

	writeJSONResponse(w, response)
}
