package confmorph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtillman/confmorph/internal/value"
)

// writeConfig writes a config file and returns its path.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndConvert(t *testing.T) {
	path := writeConfig(t, "config.yaml", "db:\n  host: localhost\n  port: 5432\n")
	client := New(Options{})

	cfg, err := client.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, err := client.Convert(cfg, "ini")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(out, "[db]\nhost='localhost'\nport=5432\n") {
		t.Errorf("ini output = %q", out)
	}
}

func TestLoadLiteralWithFormat(t *testing.T) {
	client := New(Options{Format: "json"})
	cfg, err := client.Load(`{"a": 1}`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a, _ := cfg.MapVal().Get("a"); !a.Equal(value.Int(1)) {
		t.Errorf("a = %#v, want 1", a)
	}
}

func TestExpand(t *testing.T) {
	client := New(Options{})
	cfg, err := client.Load("base: /data\nrun: \"{{ base }}/run\"\ncount: \"{{ 2 + 1 }}\"\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := client.Expand(cfg); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if run, _ := cfg.MapVal().Get("run"); !run.Equal(value.String("/data/run")) {
		t.Errorf("run = %#v, want /data/run", run)
	}
	if count, _ := cfg.MapVal().Get("count"); !count.Equal(value.Int(3)) {
		t.Errorf("count = %#v, want 3", count)
	}
}

func TestFlattenAndStructure(t *testing.T) {
	client := New(Options{})
	cfg, err := client.Load("task:\n  host: n01\n  opts:\n    threads: 4\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	flat, err := client.Flatten(cfg, nil)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if host, _ := flat.MapVal().Get("host"); !host.Equal(value.String("n01")) {
		t.Errorf("host = %#v, want n01", host)
	}
	if flat.MapVal().Has("task") {
		t.Error("flattened mapping still has nested key")
	}

	back, err := client.Structure(flat, cfg)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if !back.Equal(cfg) {
		t.Errorf("Structure(Flatten(d), d) = %#v, want %#v", back, cfg)
	}
}

func TestMergeProvideDefault(t *testing.T) {
	client := New(Options{})
	dst, err := client.Load("a: set\nb: null\n")
	if err != nil {
		t.Fatalf("Load dst: %v", err)
	}
	src, err := client.Load("a: new\nb: filled\n")
	if err != nil {
		t.Fatalf("Load src: %v", err)
	}

	if err := client.Merge(src, dst, true); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if a, _ := dst.MapVal().Get("a"); !a.Equal(value.String("set")) {
		t.Errorf("a = %#v; defaults must not replace set values", a)
	}
	if b, _ := dst.MapVal().Get("b"); !b.Equal(value.String("filled")) {
		t.Errorf("b = %#v, want filled", b)
	}
}

func TestValidate(t *testing.T) {
	client := New(Options{})
	doc, _ := client.Load("name: 3\nthreads: 4\n")
	tmpl, _ := client.Load("name: fcst\nthreads: 1\n")

	invalid, err := client.Validate(doc, tmpl)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if invalid.Len() != 1 || !invalid.Has("name") {
		t.Errorf("invalid = %#v, want only name", value.Map(invalid))
	}
}

func TestFilter(t *testing.T) {
	client := New(Options{})
	doc, _ := client.Load("task_a: 1\ntask_b: 2\nother: 3\n")

	kept, err := client.Filter(doc, []string{"task_.*"})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if kept.MapVal().Len() != 2 || kept.MapVal().Has("other") {
		t.Errorf("kept = %#v, want only task_ keys", kept)
	}
}

func TestGet(t *testing.T) {
	client := New(Options{})
	doc, _ := client.Load("task:\n  host: n01\n")

	got, err := client.Get(doc, "task.host")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "n01" {
		t.Errorf("Get = %q, want n01", got)
	}
}

func TestValidateSchema(t *testing.T) {
	client := New(Options{})
	doc, _ := client.Load("threads: 4\n")

	res, err := client.ValidateSchema(doc, `{"type": "object", "properties": {"threads": {"type": "integer"}}}`)
	if err != nil {
		t.Fatalf("ValidateSchema: %v", err)
	}
	if !res.Valid {
		t.Errorf("valid document rejected: %s", res.Error())
	}
}

func TestScalarDocumentRejected(t *testing.T) {
	client := New(Options{})
	if err := client.Expand(value.Int(3)); err == nil {
		t.Error("scalar document accepted")
	}
}
