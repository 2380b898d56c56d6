package format

import (
	"strings"
	"testing"

	"github.com/dtillman/confmorph/internal/value"
)

func TestXMLParseAttributes(t *testing.T) {
	v, err := (&XML{}).Parse(`<root><x a="1">hello</x></root>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	x, ok := v.MapVal().Get("x")
	if !ok || x.Kind() != value.KindMapping {
		t.Fatalf("x = %#v, want mapping", x)
	}

	attrib, _ := x.MapVal().Get(xmlAttribKey)
	if attrib == nil || attrib.Kind() != value.KindMapping {
		t.Fatalf("attrib = %#v, want mapping", attrib)
	}
	if a, _ := attrib.MapVal().Get("a"); !a.Equal(value.String("1")) {
		t.Errorf("attrib a = %#v, want %q", a, "1")
	}
	if text, _ := x.MapVal().Get(xmlValueKey); !text.Equal(value.String("hello")) {
		t.Errorf("text = %#v, want hello", text)
	}
}

func TestXMLParseNesting(t *testing.T) {
	text := `<config>
  <task>
    <name>fcst</name>
    <threads>4</threads>
    <empty></empty>
  </task>
  <host>h1</host>
  <host>h2</host>
</config>`
	v, err := (&XML{}).Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := v.MapVal()

	task, _ := m.Get("task")
	if task == nil || task.Kind() != value.KindMapping {
		t.Fatalf("task = %#v, want mapping", task)
	}
	if name, _ := task.MapVal().Get("name"); !name.Equal(value.String("fcst")) {
		t.Errorf("name = %#v, want fcst", name)
	}
	if threads, _ := task.MapVal().Get("threads"); !threads.Equal(value.Int(4)) {
		t.Errorf("threads = %#v, want 4", threads)
	}
	if empty, _ := task.MapVal().Get("empty"); !empty.IsNull() {
		t.Errorf("empty = %#v, want null", empty)
	}

	hosts, _ := m.Get("host")
	if !hosts.Equal(value.List(value.String("h1"), value.String("h2"))) {
		t.Errorf("host = %#v, want repeated elements as list", hosts)
	}
}

func TestXMLSerialize(t *testing.T) {
	attrs := value.NewMapping()
	attrs.Set("a", value.String("1"))
	x := value.NewMapping()
	x.Set(xmlAttribKey, value.Map(attrs))
	x.Set(xmlValueKey, value.String("hello"))
	root := value.NewMapping()
	root.Set("x", value.Map(x))

	out, err := (&XML{}).Serialize(value.Map(root))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, `<x a="1">hello</x>`) {
		t.Errorf("Serialize = %q, want x element with attribute and text", out)
	}
}

func TestXMLRoundTrip(t *testing.T) {
	task := value.NewMapping()
	task.Set("name", value.String("fcst"))
	task.Set("threads", value.Int(4))
	root := value.NewMapping()
	root.Set("task", value.Map(task))
	root.Set("host", value.List(value.String("h1"), value.String("h2")))
	doc := value.Map(root)

	a := &XML{}
	out, err := a.Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	back, err := a.Parse(out)
	if err != nil {
		t.Fatalf("reparse of %q: %v", out, err)
	}
	if !back.Equal(doc) {
		t.Errorf("round trip: %#v != %#v (serialized %q)", back, doc, out)
	}
}

func TestXMLMissingRoot(t *testing.T) {
	if _, err := (&XML{}).Parse("  "); err == nil {
		t.Error("document without root element accepted")
	}
}
