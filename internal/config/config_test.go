package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vschema/internal/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if diff := cmp.Diff([]string{"{{", "}}"}, cfg.Render.Delimiters); diff != "" {
		t.Errorf("Delimiters (-want +got):\n%s", diff)
	}
	if cfg.DebounceDuration() != DefaultDebounce {
		t.Errorf("Debounce = %v", cfg.DebounceDuration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("missing config: err = %v, want ErrNotExist", err)
	}

	writeConfig(t, dir, ConfigFileName, `{
  "render": {"pretty": true, "delimiters": ["[[", "]]"]},
  "server": {"port": 8080, "debounce": "250ms"},
  "log": {"level": "debug"}
}`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Render.Pretty || cfg.Server.Port != 8080 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if l, r := cfg.Delimiters(); l != "[[" || r != "]]" {
		t.Errorf("delimiters = %q %q", l, r)
	}
	if cfg.DebounceDuration() != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.DebounceDuration())
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("host default not applied: %q", cfg.Server.Host)
	}
	if cfg.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "vschema.yaml", "server:\n  port: 9000\n  watch: true\ns3:\n  region: eu-west-1\n  usePathStyle: true\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 || !cfg.Server.Watch {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.S3.Region != "eu-west-1" || !cfg.S3.UsePathStyle {
		t.Errorf("s3 = %+v", cfg.S3)
	}
	if cfg.Address() != "localhost:9000" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
		detail  string
	}{
		{"syntax", `{"server":`, "E150", ""},
		{"port", `{"server":{"port":70000}}`, "E151", "server.port"},
		{"level", `{"log":{"level":"loud"}}`, "E151", "log.level"},
		{"delimiters", `{"render":{"delimiters":["{{"]}}`, "E151", "render.delimiters"},
		{"empty delimiter", `{"render":{"delimiters":["{{", ""]}}`, "E151", "render.delimiters"},
		{"debounce", `{"server":{"debounce":"soon"}}`, "E151", "server.debounce"},
		{"metrics path", `{"server":{"metricsPath":"metrics"}}`, "E151", "server.metricsPath"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), ConfigFileName, tt.content)
			_, err := LoadFile(path)
			if got := errors.Code(err); got != tt.code {
				t.Fatalf("code = %q, want %q (%v)", got, tt.code, err)
			}
			var e *errors.Error
			stderrors.As(err, &e)
			if !strings.Contains(e.Detail, tt.detail) {
				t.Errorf("detail %q does not mention %q", e.Detail, tt.detail)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := New()
			cfg.Render.Title = "Saved"
			cfg.Server.Port = 4000

			path := filepath.Join(t.TempDir(), name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatal(err)
			}
			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if loaded.Render.Title != "Saved" || loaded.Server.Port != 4000 {
				t.Errorf("round trip lost values: %+v", loaded)
			}
			if loaded.Path() != path {
				t.Errorf("Path() = %q", loaded.Path())
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("expected error without a path")
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "vschema.yml", "log:\n  level: warn\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("root = %q, want %q", got, want)
	}

	if _, err := FindProjectRoot(t.TempDir()); !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}
