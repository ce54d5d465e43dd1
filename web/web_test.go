package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

const testContent = "main =\n  x = \"a\"\n  ~x\n"

func newTestServer(t *testing.T) (*Server, *http.ServeMux, string) {
	t.Helper()

	dir := t.TempDir()
	file := filepath.Join(dir, "main.roc")
	assert.NoError(t, os.WriteFile(file, []byte(testContent), 0600))

	server := New(8080, file)
	assert.NoError(t, server.reload(context.Background()))
	return server, server.setupRouter(), file
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestAPISource(t *testing.T) {
	server, mux, file := newTestServer(t)

	t.Run("WithDefaultFile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/source", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		response := decode[SourceResponse](t, rec)
		assert.Equal(t, testContent, response.Source)
		assert.Equal(t, file, response.Filepath)
		assert.Equal(t, []TokenError{{Line: 3, Column: 3, Offset: 19, Text: "~"}}, response.Errors)
	})

	t.Run("WithRelativeQueryParameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/source?filepath=main.roc", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testContent, decode[SourceResponse](t, rec).Source)
	})

	t.Run("OtherFileInDirectory", func(t *testing.T) {
		other := filepath.Join(filepath.Dir(file), "other.roc")
		assert.NoError(t, os.WriteFile(other, []byte("1u8"), 0600))

		req := httptest.NewRequest(http.MethodGet, "/api/source?filepath="+other, nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		response := decode[SourceResponse](t, rec)
		assert.Equal(t, "1u8", response.Source)
		assert.Equal(t, 1, response.Tokens)
		assert.Equal(t, []TokenError{}, response.Errors)
	})

	t.Run("FileOutsideDirectory", func(t *testing.T) {
		outside := filepath.Join(t.TempDir(), "secret.roc")
		assert.NoError(t, os.WriteFile(outside, []byte("x"), 0600))

		req := httptest.NewRequest(http.MethodGet, "/api/source?filepath="+outside, nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "access denied")
	})

	t.Run("TraversalRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/source?filepath=../../etc/passwd", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingFile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/source?filepath=missing.roc", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("NoSourceConfigured", func(t *testing.T) {
		muxNoFile := New(8080, "").setupRouter()

		req := httptest.NewRequest(http.MethodGet, "/api/source", nil)
		rec := httptest.NewRecorder()

		muxNoFile.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("PutUpdateContent", func(t *testing.T) {
		updated := "x = 1\n"
		body := `{"source":"x = 1\n"}`

		req := httptest.NewRequest(http.MethodPut, "/api/source", strings.NewReader(body))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		response := decode[SourceResponse](t, rec)
		assert.Equal(t, updated, response.Source)
		assert.Equal(t, []TokenError{}, response.Errors)

		content, err := os.ReadFile(file)
		assert.NoError(t, err)
		assert.Equal(t, updated, string(content))

		server.mu.RLock()
		assert.Equal(t, updated, server.snapshot.source)
		server.mu.RUnlock()
	})

	t.Run("PutInvalidJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/source", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("PutReadOnly", func(t *testing.T) {
		server.ReadOnly = true
		defer func() { server.ReadOnly = false }()

		req := httptest.NewRequest(http.MethodPut, "/api/source", strings.NewReader(`{"source":""}`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAPITokenize(t *testing.T) {
	_, mux, _ := newTestServer(t)

	t.Run("RawTokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tokenize", strings.NewReader(`{"source":"x = 1"}`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		response := decode[TokenizeResponse](t, rec)

		var kinds []string
		for _, tok := range response.Tokens {
			kinds = append(kinds, tok.Kind)
		}
		assert.Equal(t, []string{"Name.Variable", "Whitespace", "Punctuation", "Whitespace", "Number.Integer"}, kinds)
		assert.Equal(t, 4, response.Tokens[4].Offset)
		assert.Equal(t, []TokenError{}, response.Errors)
	})

	t.Run("Coalesced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tokenize", strings.NewReader(`{"source":"\"ab\"","coalesce":true}`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		response := decode[TokenizeResponse](t, rec)
		assert.Equal(t, 1, len(response.Tokens))
		assert.Equal(t, `"ab"`, response.Tokens[0].Text)
	})

	t.Run("ReportsErrors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tokenize", strings.NewReader(`{"source":"a\n~"}`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		response := decode[TokenizeResponse](t, rec)
		assert.Equal(t, []TokenError{{Line: 2, Column: 1, Offset: 2, Text: "~"}}, response.Errors)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tokenize", strings.NewReader("nope"))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tokenize", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAPILexer(t *testing.T) {
	server, _, _ := newTestServer(t)
	server.Version = "1.2.3"
	mux := server.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/lexer", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	response := decode[map[string]any](t, rec)
	assert.Equal(t, "Roc", response["name"])
	assert.Equal(t, "1.2.3", response["version"])
	assert.Equal(t, []any{"doublequote", "imports", "int_lit", "numbers", "root"}, response["states"])
	assert.Equal(t, []any{"*.roc"}, response["filenames"])
}

func TestAPIHighlight(t *testing.T) {
	_, mux, _ := newTestServer(t)

	t.Run("Fragment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/highlight", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `<span class="kr">main </span>`)
		assert.Contains(t, rec.Body.String(), `<span class="err">~</span>`)
		assert.NotContains(t, rec.Body.String(), `class="ln"`)
	})

	t.Run("LineNumbers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/highlight?line_numbers=true", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Contains(t, rec.Body.String(), `<span class="ln">   3 </span>`)
	})

	t.Run("InvalidLineNumbers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/highlight?line_numbers=maybe", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Stylesheet", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/highlight.css", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), ".roclex .kr {")
	})
}

func TestIndex(t *testing.T) {
	_, mux, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>main.roc - roclex</title>")
	assert.Contains(t, body, `<span class="s">&#34;a&#34;</span>`)
	assert.Contains(t, body, "/api/events")

	req = httptest.NewRequest(http.MethodGet, "/elsewhere", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIsPathWithin(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/srv/app", "/srv/app/main.roc", true},
		{"/srv/app", "/srv/app/pkg/a.roc", true},
		{"/srv/app", "/srv/app", true},
		{"/srv/app", "/srv/other/a.roc", false},
		{"/srv/app", "/srv", false},
		{"/srv/app", "/srv/app/..hidden/a.roc", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isPathWithin(tt.dir, tt.path))
		})
	}
}

func TestBroadcast(t *testing.T) {
	server := New(8080, "")

	ch := make(chan string, 1)
	server.sseClients[ch] = struct{}{}

	server.broadcast("reload")
	assert.Equal(t, "reload", <-ch)

	// A full client buffer never blocks the broadcaster.
	server.broadcast("one")
	server.broadcast("two")
	assert.Equal(t, "one", <-ch)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	server, _, file := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan string, 10)
	server.sseMu.Lock()
	server.sseClients[ch] = struct{}{}
	server.sseMu.Unlock()

	assert.NoError(t, server.startWatcher(ctx))
	assert.NoError(t, os.WriteFile(file, []byte("y = 2\n"), 0600))

	select {
	case event := <-ch:
		assert.Equal(t, "reload", event)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload event")
	}

	server.mu.RLock()
	defer server.mu.RUnlock()
	assert.Equal(t, "y = 2\n", server.snapshot.source)
}
