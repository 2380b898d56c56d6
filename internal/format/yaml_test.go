package format

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtillman/confmorph/internal/value"
)

func TestYAMLParseTypes(t *testing.T) {
	text := `
name: fcst
count: 3
ratio: 0.25
enabled: true
nothing: null
tags:
  - a
  - 7
nested:
  inner: x
`
	v, err := NewYAML(Options{}).Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := v.MapVal()

	checks := []struct {
		key  string
		want *value.Value
	}{
		{"name", value.String("fcst")},
		{"count", value.Int(3)},
		{"ratio", value.Float(0.25)},
		{"enabled", value.Bool(true)},
		{"nothing", value.Null()},
		{"tags", value.List(value.String("a"), value.Int(7))},
	}
	for _, c := range checks {
		got, ok := m.Get(c.key)
		if !ok {
			t.Errorf("key %q missing", c.key)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("%s = %#v, want %#v", c.key, got, c.want)
		}
	}

	nested, _ := m.Get("nested")
	if nested.Kind() != value.KindMapping {
		t.Fatalf("nested kind = %v, want mapping", nested.Kind())
	}
}

func TestYAMLKeyOrderPreserved(t *testing.T) {
	v, err := NewYAML(Options{}).Parse("z: 1\na: 2\nm: 3\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := v.MapVal().Keys()
	want := []string{"z", "a", "m"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key order = %v, want %v", got, want)
		}
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	a := NewYAML(Options{})
	texts := []string{
		"a: 1\nb: two\n",
		"outer:\n  flag: false\n  pi: 3.5\nlist:\n  - 1\n  - x\n  - inner: 2\n",
		"s: |-\n  line one\n  line two\nn: null\n",
		"quoted: \"5\"\n",
	}
	for _, text := range texts {
		v, err := a.Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		out, err := a.Serialize(v)
		if err != nil {
			t.Fatalf("Serialize(%q): %v", text, err)
		}
		back, err := a.Parse(out)
		if err != nil {
			t.Fatalf("reparse of %q: %v", out, err)
		}
		if !back.Equal(v) {
			t.Errorf("round trip of %q: %#v != %#v (serialized %q)", text, back, v, out)
		}
	}
}

func TestYAMLMultilineStringsUseBlockStyle(t *testing.T) {
	m := value.NewMapping()
	m.Set("script", value.String("line one\nline two"))
	out, err := NewYAML(Options{}).Serialize(value.Map(m))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, "|") {
		t.Errorf("multi-line string not in block style: %q", out)
	}
}

func TestYAMLDirectives(t *testing.T) {
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	env := map[string]string{"CYCLE_FIRST": "2024031000"}
	a := NewYAML(Options{
		Now: func() time.Time { return fixed },
		Getenv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
	})

	text := `
log: !cycstr "&LOGDIR;/fcst.log"
name: !join_str [fcst_, "01"]
cycledef: !startstopfreq [CYCLE_FIRST, "2024031100", "06"]
run_id: !nowtimestamp ""
`
	v, err := a.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := v.MapVal()

	wants := map[string]string{
		"log":      "<cyclestr>&LOGDIR;/fcst.log</cyclestr>",
		"name":     "fcst_01",
		"cycledef": "202403100000 202403110000 06:00:00",
		"run_id":   "id_1710072000",
	}
	for k, want := range wants {
		got, ok := m.Get(k)
		if !ok {
			t.Errorf("key %q missing", k)
			continue
		}
		if got.StringVal() != want {
			t.Errorf("%s = %q, want %q", k, got.StringVal(), want)
		}
	}
}

func TestYAMLIncludeSplices(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "inc.yaml"), []byte("x: 5\nshared: inc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewYAML(Options{IncludeRoot: dir})
	v, err := a.Parse("a: 1\ndefaults: !include [inc.yaml]\nshared: doc\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := v.MapVal()

	if m.Has("defaults") {
		t.Error("include key kept; its contents should be spliced instead")
	}
	if x, _ := m.Get("x"); x == nil || x.IntVal() != 5 {
		t.Errorf("x = %v, want 5", x)
	}
	if shared, _ := m.Get("shared"); shared.StringVal() != "doc" {
		t.Errorf("shared = %q, want doc (document entry written after splice)", shared.StringVal())
	}
}

func TestYAMLUnknownTag(t *testing.T) {
	if _, err := NewYAML(Options{}).Parse("a: !mystery x\n"); err == nil {
		t.Error("unknown custom tag accepted")
	}
}

func TestYAMLEmptyDocument(t *testing.T) {
	v, err := NewYAML(Options{}).Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("empty document = %#v, want null", v)
	}
}
