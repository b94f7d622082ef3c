package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branchscript-editor/workspace"
)

const testStory = "=== intro\n* Open the door\n= door\n> end\n* Leave\n> door\n*# secret\n> back"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := workspace.NewStore(workspace.StoreConfig{CacheEntries: 16})
	require.NoError(t, err)
	t.Cleanup(store.Shutdown)

	server, err := NewServer(ServerConfig{Port: 0, Store: store, DebounceTime: 20 * time.Millisecond})
	require.NoError(t, err)
	return server
}

func do(t *testing.T, s *Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

// ============================================
// Utils
// ============================================

func TestHealthAndFormats(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])

	code, body = do(t, s, http.MethodGet, "/api/formats", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "BranchScript", body["active"])
	assert.Contains(t, body["formats"], "branchscript")

	t.Logf("✅ Health OK, formati: %v", body["formats"])
}

func TestAnalyzeText(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodPost, "/api/analyze", AnalyzeRequest{Text: "=== intro\n~set p_a = (1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, float64(1), body["errors"])
	assert.Len(t, body["diagnostics"], 1)

	code, body = do(t, s, http.MethodPost, "/api/analyze", AnalyzeRequest{Text: testStory})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])
	assert.Empty(t, body["diagnostics"])

	assert.Empty(t, s.store.URIs(), "analyze does not open documents")
}

// ============================================
// Documents
// ============================================

func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t)
	uri := "file:///stories/intro.branch"

	code, body := do(t, s, http.MethodPost, "/api/document/open", OpenDocumentRequest{URI: uri, Version: 1, Text: "=== intro\n[if f_x]"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uri, body["uri"])
	assert.Equal(t, float64(1), body["errors"])

	code, body = do(t, s, http.MethodPost, "/api/document/change", ChangeDocumentRequest{URI: uri, Version: 2, Text: testStory})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["version"])
	assert.Equal(t, true, body["valid"])

	code, body = do(t, s, http.MethodGet, "/api/document/diagnostics?uri="+uri, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["version"])

	code, body = do(t, s, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{uri}, body["documents"])

	code, _ = do(t, s, http.MethodPost, "/api/document/close", DocumentRequest{URI: uri})
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, s, http.MethodPost, "/api/document/close", DocumentRequest{URI: uri})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Documento non aperto", body["error"])

	t.Log("✅ Ciclo di vita documento OK")
}

func TestOpenUntitled(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodPost, "/api/document/open", OpenDocumentRequest{Text: "=== a"})
	require.Equal(t, http.StatusOK, code)

	uri, _ := body["uri"].(string)
	assert.True(t, strings.HasPrefix(uri, UntitledScheme), uri)
	assert.Equal(t, []string{uri}, s.store.URIs())
}

func TestDocumentErrors(t *testing.T) {
	s := newTestServer(t)

	code, _ := do(t, s, http.MethodPost, "/api/document/change", ChangeDocumentRequest{URI: "missing", Text: "x"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodPost, "/api/document/change", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusBadRequest, code, "uri is required")

	code, _ = do(t, s, http.MethodGet, "/api/document/outline", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodGet, "/api/document/folding?uri=missing", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodPost, "/api/document/hover", PositionRequest{URI: "missing"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPositionRejectsNegativeValues(t *testing.T) {
	s := newTestServer(t)
	s.store.Open("doc", 1, testStory)

	code, _ := do(t, s, http.MethodPost, "/api/document/hover", PositionRequest{URI: "doc", Line: 1, Character: -1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/api/document/completion", PositionRequest{URI: "doc", Line: -2, Character: 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/api/document/hover", PositionRequest{URI: "doc", Line: 0, Character: 0})
	assert.Equal(t, http.StatusOK, code, "zero is a valid position")

	t.Log("✅ Posizioni negative rifiutate")
}

func TestDocumentViews(t *testing.T) {
	s := newTestServer(t)
	s.store.Open("doc", 1, testStory)

	code, body := do(t, s, http.MethodGet, "/api/document/outline?uri=doc", nil)
	require.Equal(t, http.StatusOK, code)
	symbols, _ := body["symbols"].([]any)
	require.Len(t, symbols, 1)
	assert.Equal(t, "intro", symbols[0].(map[string]any)["name"])

	code, body = do(t, s, http.MethodGet, "/api/document/folding?uri=doc", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["ranges"])

	code, body = do(t, s, http.MethodPost, "/api/document/hover", PositionRequest{URI: "doc", Line: 5, Character: 3})
	require.Equal(t, http.StatusOK, code)
	hover, _ := body["hover"].(map[string]any)
	require.NotNil(t, hover)
	assert.Contains(t, hover["contents"], "Defined on line 3")

	code, body = do(t, s, http.MethodPost, "/api/document/hover", PositionRequest{URI: "doc", Line: 1, Character: 4})
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["hover"])

	code, body = do(t, s, http.MethodPost, "/api/document/completion", PositionRequest{URI: "doc", Line: 3, Character: 2})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(7), body["count"])
}

// ============================================
// Story & Flow
// ============================================

func writeStory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intro.branch")
	require.NoError(t, os.WriteFile(path, []byte(testStory), 0644))
	return path
}

func TestStoryEndpoints(t *testing.T) {
	s := newTestServer(t)
	path := writeStory(t)

	code, body := do(t, s, http.MethodPost, "/api/story/validate", FileRequest{FilePath: path})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])

	code, body = do(t, s, http.MethodPost, "/api/story/parse", FileRequest{FilePath: path})
	require.Equal(t, http.StatusOK, code)
	stories, _ := body["stories"].([]any)
	require.Len(t, stories, 1)
	story := stories[0].(map[string]any)
	assert.Equal(t, "intro", story["id"])
	assert.Equal(t, float64(3), story["count"])

	code, _ = do(t, s, http.MethodPost, "/api/story/validate", FileRequest{FilePath: filepath.Join(t.TempDir(), "missing.branch")})
	assert.Equal(t, http.StatusInternalServerError, code)

	code, _ = do(t, s, http.MethodPost, "/api/story/parse", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFlowEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.store.Open("doc", 1, testStory)

	code, body := do(t, s, http.MethodPost, "/api/flow/validate", ValidatePathRequest{
		StoryRef: StoryRef{URI: "doc", Story: "intro"},
		Path:     []string{"start", "door"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])

	code, body = do(t, s, http.MethodPost, "/api/flow/validate", ValidatePathRequest{
		StoryRef: StoryRef{FilePath: writeStory(t), Story: "intro"},
		Path:     []string{"start", "secret"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["valid"])
	assert.Len(t, body["errors"], 1)

	code, body = do(t, s, http.MethodPost, "/api/flow/suggest", SuggestPathsRequest{StoryRef: StoryRef{URI: "doc", Story: "intro"}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "start", body["start"])
	assert.Equal(t, float64(5), body["max_depth"])
	assert.Equal(t, []any{[]any{"start", "door"}}, body["paths"])

	code, body = do(t, s, http.MethodPost, "/api/flow/unreachable", StoryRef{URI: "doc", Story: "intro"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"secret"}, body["unreachable"])

	code, _ = do(t, s, http.MethodPost, "/api/flow/unreachable", StoryRef{URI: "doc", Story: "missing"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodPost, "/api/flow/unreachable", StoryRef{Story: "intro"})
	assert.Equal(t, http.StatusBadRequest, code)

	t.Log("✅ Endpoint flow OK")
}

// ============================================
// Watcher & WebSocket
// ============================================

func TestWatcherEndpoints(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	code, body := do(t, s, http.MethodGet, "/api/watch/status", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["running"])

	code, _ = do(t, s, http.MethodPost, "/api/watch/stop", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/api/watch/start", StartWatcherRequest{Paths: []string{dir}})
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, s, http.MethodPost, "/api/watch/start", StartWatcherRequest{Paths: []string{dir}})
	assert.Equal(t, http.StatusBadRequest, code, "already running")

	code, body = do(t, s, http.MethodGet, "/api/watch/status", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["running"])
	assert.Equal(t, []any{dir}, body["paths"])

	path := filepath.Join(dir, "live.branch")
	require.NoError(t, os.WriteFile(path, []byte(testStory), 0644))
	require.Eventually(t, func() bool {
		_, ok := s.store.Get(path)
		return ok
	}, 5*time.Second, 20*time.Millisecond, "the watcher opens new files")

	code, _ = do(t, s, http.MethodPost, "/api/watch/stop", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestWebSocketDiagnostics(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.store.Open("doc", 3, "=== intro\n[endif]")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "diagnostics", msg["type"])
	assert.Equal(t, "doc", msg["uri"])
	document, _ := msg["document"].(map[string]any)
	require.NotNil(t, document)
	assert.Equal(t, float64(3), document["version"])
	assert.Equal(t, float64(1), document["errors"])

	t.Log("✅ Diagnostiche inoltrate via WebSocket")
}
