package lexer

import (
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

// Config is the registration metadata a host uses to pick a table for a
// file. The scanner itself never looks at it.
type Config struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases"`
	Filenames []string `json:"filenames"` // Glob patterns matched against the base name
	MimeTypes []string `json:"mimetypes"`
}

// MatchFilename reports whether the base name of path matches one of the
// filename patterns.
func (c Config) MatchFilename(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range c.Filenames {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// HasAlias reports whether name is the table's name or one of its aliases,
// ignoring case.
func (c Config) HasAlias(name string) bool {
	if strings.EqualFold(c.Name, name) {
		return true
	}
	for _, alias := range c.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// HasMimeType reports whether the table declares the given MIME type.
func (c Config) HasMimeType(mime string) bool {
	return slices.Contains(c.MimeTypes, mime)
}
