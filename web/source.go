package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/roclex/formatter"
	"github.com/robinvdvleuten/roclex/roc"
)

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type SourceResponse struct {
	Filepath string       `json:"filepath"`
	Source   string       `json:"source"`
	Tokens   int          `json:"tokens"`
	Errors   []TokenError `json:"errors"`
}

func newSourceResponse(filename string, snap *snapshot) *SourceResponse {
	return &SourceResponse{
		Filepath: filename,
		Source:   snap.source,
		Tokens:   snap.tokens,
		Errors:   snap.errors,
	}
}

// resolveFilepathFromString resolves a filepath string to an absolute path.
// If the path is empty, returns the served file. Relative paths are taken
// relative to the directory of the served file. The resolved path is
// validated to ensure it's within the allowed directory.
func (s *Server) resolveFilepathFromString(path string) (string, error) {
	s.mu.RLock()
	root := s.rootFile
	s.mu.RUnlock()

	if root == "" {
		return "", fmt.Errorf("no source file configured")
	}
	if path == "" {
		return root, nil
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(root), path)
	}
	absPath := filepath.Clean(path)

	if err := validateFilepath(filepath.Dir(root), absPath); err != nil {
		return "", err
	}

	return absPath, nil
}

// isPathWithin checks if the resolved path is within the allowed directory.
// Both paths must already be resolved to their canonical form (via filepath.EvalSymlinks).
func isPathWithin(allowedDir, resolvedPath string) bool {
	rel, err := filepath.Rel(allowedDir, resolvedPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// validateFilepath ensures the path is within the allowed directory by
// resolving all symlinks and checking the canonical path. This rejects
// both relative path traversal (../) and symlinks pointing elsewhere.
func validateFilepath(allowedDir, path string) error {
	absAllowedDir, err := filepath.EvalSymlinks(allowedDir)
	if err != nil {
		return fmt.Errorf("invalid allowed directory: %w", err)
	}

	resolvedPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		parentDir := filepath.Dir(path)
		resolvedParent, err := filepath.EvalSymlinks(parentDir)
		if err != nil {
			return fmt.Errorf("access denied: invalid path")
		}
		resolvedPath = filepath.Join(resolvedParent, filepath.Base(path))
	}

	if !isPathWithin(absAllowedDir, resolvedPath) {
		return fmt.Errorf("access denied: filepath outside allowed directory")
	}

	return nil
}

// resolveFilepath extracts the filepath from the request query parameters.
func (s *Server) resolveFilepath(r *http.Request) (string, error) {
	return s.resolveFilepathFromString(r.URL.Query().Get("filepath"))
}

// load returns the tokenized contents of filename. The served file comes
// from the last reload; other files are read on demand.
func (s *Server) load(ctx context.Context, filename string) (*snapshot, error) {
	s.mu.RLock()
	root, snap := s.rootFile, s.snapshot
	s.mu.RUnlock()

	if filename == root && snap != nil {
		return snap, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return scan(ctx, filename, string(content)), nil
}

func writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Failed to read file", http.StatusInternalServerError)
}

// handleGetSource handles GET requests to /api/source.
// Returns the file content and its lexical errors as JSON.
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	filename, err := s.resolveFilepath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := s.load(r.Context(), filename)
	if err != nil {
		writeLoadError(w, err)
		return
	}

	writeJSONResponse(w, newSourceResponse(filename, snap))
}

// handlePutSource handles PUT requests to /api/source.
// Writes the provided content to the file and returns its lexical errors.
func (s *Server) handlePutSource(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Filepath string `json:"filepath"`
		Source   string `json:"source"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSourceSize)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	filename, err := s.resolveFilepathFromString(request.Filepath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := os.WriteFile(filename, []byte(request.Source), 0600); err != nil {
		http.Error(w, "Failed to write file", http.StatusInternalServerError)
		return
	}

	s.mu.RLock()
	isRoot := filename == s.rootFile
	s.mu.RUnlock()

	if isRoot {
		if err := s.reload(r.Context()); err != nil {
			http.Error(w, "Failed to reload source", http.StatusInternalServerError)
			return
		}
	}

	snap, err := s.load(r.Context(), filename)
	if err != nil {
		writeLoadError(w, err)
		return
	}

	writeJSONResponse(w, newSourceResponse(filename, snap))
}

// handleHighlight handles GET requests to /api/highlight.
// Returns the file rendered as an HTML fragment.
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	filename, err := s.resolveFilepath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := []formatter.Option{formatter.WithMode(formatter.ModeHTML)}
	if v := r.URL.Query().Get("line_numbers"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid line_numbers parameter", http.StatusBadRequest)
			return
		}
		if enabled {
			opts = append(opts, formatter.WithLineNumbers())
		}
	}

	snap, err := s.load(r.Context(), filename)
	if err != nil {
		writeLoadError(w, err)
		return
	}

	var buf strings.Builder
	if err := formatter.New(opts...).Format(r.Context(), roc.Tokenize(snap.source), &buf); err != nil {
		http.Error(w, "Failed to render source", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}

// handleHighlightCSS serves the stylesheet for highlighted fragments.
func (s *Server) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_ = formatter.WriteCSS(w, "")
}
