package query

import (
	"strings"
	"testing"
)

const doc = `{
    "task": {"host": "n01", "threads": 4, "gone": null},
    "servers": [{"name": "a"}, {"name": "b"}]
}`

func TestExtract(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"task.host", "n01"},
		{"task.threads", "4"},
		{"task.gone", "null"},
		{"servers.1.name", "b"},
		{"servers.#.name", `["a","b"]`},
	}
	for _, c := range cases {
		got, err := Extract(doc, c.path)
		if err != nil {
			t.Errorf("Extract(%s): %v", c.path, err)
			continue
		}
		if got != c.want {
			t.Errorf("Extract(%s) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestExtractMissingPath(t *testing.T) {
	if _, err := Extract(doc, "task.nope"); err == nil {
		t.Error("missing path accepted")
	}
}

func TestExtractEmptyInputs(t *testing.T) {
	if _, err := Extract("", "a"); err == nil {
		t.Error("empty document accepted")
	}
	if _, err := Extract(doc, ""); err == nil {
		t.Error("empty path accepted")
	}
}

func TestExtractAll(t *testing.T) {
	got, err := ExtractAll(doc, map[string]string{
		"host":  "task.host",
		"first": "servers.0.name",
	})
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if got["host"] != "n01" || got["first"] != "a" {
		t.Errorf("ExtractAll = %v", got)
	}
}

func TestExtractAllPartialFailure(t *testing.T) {
	got, err := ExtractAll(doc, map[string]string{
		"ok":  "task.host",
		"bad": "task.nope",
	})
	if err == nil {
		t.Fatal("missing path accepted")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("err = %v, want failed name included", err)
	}
	if got["ok"] != "n01" {
		t.Errorf("successful extraction dropped: %v", got)
	}
}
