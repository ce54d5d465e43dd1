// Package web provides an HTTP server that highlights a Roc source file.
//
// The server exposes a JSON API for tokenizing arbitrary input and for
// reading, writing and highlighting the served file, plus a small page that
// renders the file and reloads itself whenever the file changes on disk.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
// File access is restricted to the directory of the served file.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robinvdvleuten/roclex/lexer"
	"github.com/robinvdvleuten/roclex/roc"
	"github.com/robinvdvleuten/roclex/telemetry"
)

// maxSourceSize bounds request bodies carrying source text.
const maxSourceSize = 4 << 20

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	ReadOnly     bool
	WatchEnabled bool

	mu       sync.RWMutex
	rootFile string // Absolute path of the served file
	snapshot *snapshot

	// inputFile is the file path passed to New(), used only for initial loading.
	inputFile string

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

// snapshot is the served file as of the last (re)load.
type snapshot struct {
	source string
	errors []TokenError
	tokens int
}

func New(port int, file string) *Server {
	return NewWithVersion(port, file, "", "")
}

func NewWithVersion(port int, file, version, commitSHA string) *Server {
	return &Server{
		Port:       port,
		Host:       "127.0.0.1",
		Version:    version,
		CommitSHA:  commitSHA,
		inputFile:  file,
		sseClients: make(map[chan string]struct{}),
	}
}

func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))

	if s.inputFile == "" {
		timer.End()
		return fmt.Errorf("source file is required")
	}

	loadTimer := timer.Child(fmt.Sprintf("web.load %s", filepath.Base(s.inputFile)))
	err := s.reload(ctx)
	loadTimer.End()
	if err != nil {
		timer.End()
		return fmt.Errorf("failed to load source: %w", err)
	}

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			timer.End()
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	setupTimer := timer.Child("web.setup_router")
	mux := s.setupRouter()
	setupTimer.End()
	timer.End()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/lexer", s.handleGetLexer)
	mux.HandleFunc("POST /api/tokenize", s.handleTokenize)
	mux.HandleFunc("GET /api/source", s.handleGetSource)
	mux.HandleFunc("PUT /api/source", s.requireWritable(s.handlePutSource))
	mux.HandleFunc("GET /api/highlight", s.handleHighlight)
	mux.HandleFunc("GET /api/highlight.css", s.handleHighlightCSS)
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return mux
}

// requireWritable is middleware that rejects write requests in read-only mode.
func (s *Server) requireWritable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ReadOnly {
			http.Error(w, "Server is in read-only mode", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// reload reads and tokenizes the served file.
// Caller must NOT hold the mutex - this method acquires it internally.
func (s *Server) reload(ctx context.Context) error {
	root, err := filepath.Abs(s.inputFile)
	if err != nil {
		return fmt.Errorf("invalid filepath: %w", err)
	}

	content, err := os.ReadFile(root)
	if err != nil {
		return err
	}

	snap := scan(ctx, root, string(content))

	s.mu.Lock()
	s.rootFile = root
	s.snapshot = snap
	s.mu.Unlock()

	return nil
}

// scan tokenizes source and collects its Error tokens.
func scan(ctx context.Context, filename, source string) *snapshot {
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("web.tokenize %s", filepath.Base(filename)))
	defer timer.End()

	snap := &snapshot{source: source, errors: []TokenError{}}
	for tok := range lexer.Coalesce(roc.NewScanner(filename, source).All()) {
		snap.tokens++
		if tok.Kind == lexer.Error {
			snap.errors = append(snap.errors, newTokenError(tok))
		}
	}
	timer.Tokens(snap.tokens)

	return snap
}

// startWatcher watches the directory of the served file, so atomic saves
// that replace the file are picked up too.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	s.mu.RLock()
	root := s.rootFile
	s.mu.RUnlock()

	if err := watcher.Add(filepath.Dir(root)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(root), err)
	}

	go s.runWatcher(ctx, watcher, root)

	return nil
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher, root string) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Editors often write files in multiple steps
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != root {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.handleFileChange(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleFileChange reloads the served file and notifies SSE clients.
func (s *Server) handleFileChange(ctx context.Context) {
	if err := s.reload(ctx); err != nil {
		// Mid-save the file may briefly not exist; the next event retries.
		log.Printf("Failed to reload source: %v", err)
		return
	}
	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}
