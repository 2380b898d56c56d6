package format

import (
	"strings"
	"testing"

	"github.com/dtillman/confmorph/internal/value"
)

func TestINIParse(t *testing.T) {
	text := `
top=plain
[db]
host='localhost'
port=5432
ratio=0.5
debug=True
empty=
servers=a, b, 3
`
	v, err := (&INI{}).Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := v.MapVal()

	if top, _ := m.Get("top"); !top.Equal(value.String("plain")) {
		t.Errorf("top = %#v, want plain", top)
	}

	db, err := SectionValue(m, "db", "host")
	if err != nil {
		t.Fatalf("SectionValue: %v", err)
	}
	if !db.Equal(value.String("localhost")) {
		t.Errorf("db.host = %#v, want localhost", db)
	}

	sec, _ := m.Get("db")
	checks := []struct {
		key  string
		want *value.Value
	}{
		{"port", value.Int(5432)},
		{"ratio", value.Float(0.5)},
		{"debug", value.Bool(true)},
		{"empty", value.Null()},
		{"servers", value.List(value.String("a"), value.String("b"), value.Int(3))},
	}
	for _, c := range checks {
		got, ok := sec.MapVal().Get(c.key)
		if !ok {
			t.Errorf("db.%s missing", c.key)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("db.%s = %#v, want %#v", c.key, got, c.want)
		}
	}
}

func TestINISerialize(t *testing.T) {
	db := value.NewMapping()
	db.Set("host", value.String("localhost"))
	db.Set("port", value.Int(5432))
	root := value.NewMapping()
	root.Set("db", value.Map(db))

	out, err := (&INI{}).Serialize(value.Map(root))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, "[db]\nhost='localhost'\nport=5432\n") {
		t.Errorf("Serialize = %q, want [db] section with quoted string and bare int", out)
	}
}

func TestINIDottedSections(t *testing.T) {
	leaf := value.NewMapping()
	leaf.Set("k", value.Int(1))
	mid := value.NewMapping()
	mid.Set("c", value.Map(leaf))
	root := value.NewMapping()
	root.Set("a", value.Map(mid))

	out, err := (&INI{}).Serialize(value.Map(root))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, "[a.c]\nk=1\n") {
		t.Errorf("Serialize = %q, want dotted [a.c] header", out)
	}
	if strings.Contains(out, "[a]\n") {
		t.Errorf("Serialize = %q; [a] has no direct entries and should emit no header", out)
	}
}

func TestINIQuoteSubstitution(t *testing.T) {
	sec := value.NewMapping()
	sec.Set("msg", value.String("it's a\nmultiline"))
	root := value.NewMapping()
	root.Set("s", value.Map(sec))

	out, err := (&INI{}).Serialize(value.Map(root))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, `msg='it"s a multiline'`) {
		t.Errorf("Serialize = %q; single quotes and newlines must be substituted", out)
	}
}

func TestINIRoundTrip(t *testing.T) {
	sec := value.NewMapping()
	sec.Set("host", value.String("localhost"))
	sec.Set("port", value.Int(8080))
	sec.Set("ratio", value.Float(1.5))
	sec.Set("debug", value.Bool(false))
	sec.Set("nothing", value.Null())
	sec.Set("mix", value.List(value.String("a"), value.Int(2)))
	root := value.NewMapping()
	root.Set("svc", value.Map(sec))
	doc := value.Map(root)

	a := &INI{}
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

func TestINISectionValueMissing(t *testing.T) {
	m := value.NewMapping()
	if _, err := SectionValue(m, "nope", "k"); err == nil {
		t.Error("missing section accepted")
	}
}

func TestINISerializeNonMapping(t *testing.T) {
	if _, err := (&INI{}).Serialize(value.Int(3)); err == nil {
		t.Error("scalar document accepted")
	}
}
