package preview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vschema/internal/config"
)

func newTestServer(t *testing.T, src string, watch bool) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.New()
	cfg.Server.Watch = watch
	s := New(Options{Source: src, Config: cfg})
	if src != "" {
		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRenderAPI(t *testing.T) {
	_, ts := newTestServer(t, "", false)

	body := `{
		"context": {"name": "Ada", "items": ["a", "b"]},
		"nodes": [
			{"tag": "p", "children": "Hi {{ name }}"},
			{"tag": "li", "attrs": {"v-for": "item in items"}, "children": "{{ item }}"},
			{"tag": "div", "attrs": {"css": ".box { color: red }"}}
		]
	}`
	resp, err := http.Post(ts.URL+"/api/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got renderResult
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := renderResult{
		HTML: "<p>Hi Ada</p><li>a</li><li>b</li><div></div>",
		CSS:  ".box { color: red }",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRenderAPIDiagnostics(t *testing.T) {
	_, ts := newTestServer(t, "", false)

	body := `[{"tag": "p", "attrs": {"v-if": "a +"}, "children": "x"}]`
	resp, err := http.Post(ts.URL+"/api/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got renderResult
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.HTML != "" {
		t.Errorf("HTML = %q, want empty", got.HTML)
	}
	if len(got.Diagnostics) == 0 {
		t.Error("expected a diagnostic for the malformed condition")
	}
}

func TestRenderAPIBadRequest(t *testing.T) {
	_, ts := newTestServer(t, "", false)

	resp, err := http.Post(ts.URL+"/api/render", "application/json", strings.NewReader(`{"nodes": 3}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPage(t *testing.T) {
	src := writeSchema(t, `{"context": {"title": "Home"}, "nodes": [{"tag": "h1", "children": "{{ title }}"}]}`)

	t.Run("without watch", func(t *testing.T) {
		_, ts := newTestServer(t, src, false)
		status, body := get(t, ts.URL+"/")
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if !strings.Contains(body, "<h1>Home</h1>") {
			t.Errorf("body missing heading:\n%s", body)
		}
		if strings.Contains(body, ReloadPath) {
			t.Error("reload script injected without watch")
		}
	})

	t.Run("with watch", func(t *testing.T) {
		_, ts := newTestServer(t, src, true)
		_, body := get(t, ts.URL+"/")
		if !strings.Contains(body, `"`+ReloadPath+`"`) {
			t.Errorf("reload script missing:\n%s", body)
		}
	})
}

func TestPageNotLoaded(t *testing.T) {
	_, ts := newTestServer(t, "", false)
	status, _ := get(t, ts.URL+"/")
	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
}

func TestLoadKeepsPreviousDocument(t *testing.T) {
	src := writeSchema(t, `[{"tag": "p", "children": "first"}]`)
	s, ts := newTestServer(t, src, false)

	if err := os.WriteFile(src, []byte(`[{"tag": `), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}

	_, body := get(t, ts.URL+"/")
	if !strings.Contains(body, "<p>first</p>") {
		t.Errorf("previous document not served:\n%s", body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, "", false)

	status, body := get(t, ts.URL+"/healthz")
	if status != http.StatusOK || body != "ok" {
		t.Errorf("healthz = %d %q", status, body)
	}

	resp, err := http.Post(ts.URL+"/api/render", "application/json", strings.NewReader(`[{"tag": "p"}]`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	status, body = get(t, ts.URL+config.DefaultMetricsPath)
	if status != http.StatusOK {
		t.Fatalf("metrics status = %d", status)
	}
	if !strings.Contains(body, `vschema_renders_total{status="success"} 1`) {
		t.Errorf("render counter missing:\n%s", body)
	}
}

func TestRefreshBroadcasts(t *testing.T) {
	src := writeSchema(t, `[{"tag": "p", "children": "v1"}]`)
	s, ts := newTestServer(t, src, true)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + ReloadPath
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for s.reload.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.reload.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", s.reload.ClientCount())
	}

	if err := os.WriteFile(src, []byte(`[{"tag": "p", "children": "v2"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	s.Refresh(context.Background())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg ReloadMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != ReloadTypeFull {
		t.Errorf("Type = %q, want %q", msg.Type, ReloadTypeFull)
	}

	_, body := get(t, ts.URL+"/")
	if !strings.Contains(body, "<p>v2</p>") {
		t.Errorf("page not refreshed:\n%s", body)
	}

	if err := os.WriteFile(src, []byte(`not json`), 0644); err != nil {
		t.Fatal(err)
	}
	s.Refresh(context.Background())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != ReloadTypeError || msg.Error == "" {
		t.Errorf("got %+v, want error message", msg)
	}
}

func TestClientScript(t *testing.T) {
	script := ClientScript("/custom/reload")
	if !strings.Contains(script, `"/custom/reload"`) {
		t.Error("path not substituted")
	}
	if strings.Contains(script, "__RELOAD_PATH__") {
		t.Error("placeholder left in script")
	}
}

func TestReloadMessageJSON(t *testing.T) {
	data, err := json.Marshal(ReloadMessage{Type: ReloadTypeFull})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"reload"}` {
		t.Errorf("got %s", data)
	}
}

func TestWatcherDebounces(t *testing.T) {
	src := writeSchema(t, `[]`)

	changes := make(chan string, 10)
	w, err := NewWatcher(src, 50*time.Millisecond, func(path string) { changes <- path }, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Writes to a sibling are ignored.
	if err := os.WriteFile(filepath.Join(filepath.Dir(src), "other.json"), []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(src, []byte(`[{"tag": "p"}]`), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-changes:
		want, _ := filepath.Abs(src)
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	select {
	case <-changes:
		t.Error("writes were not coalesced")
	case <-time.After(200 * time.Millisecond):
	}
}
