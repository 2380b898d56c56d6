package value

import "testing"

func TestMappingPreservesInsertionOrder(t *testing.T) {
	m := NewMapping()
	m.Set("b", Int(1))
	m.Set("a", Int(2))
	m.Set("c", Int(3))
	m.Set("a", Int(4)) // overwrite keeps position

	want := []string{"b", "a", "c"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if v, _ := m.Get("a"); v.IntVal() != 4 {
		t.Errorf("a = %d, want 4 (last write wins)", v.IntVal())
	}
}

func TestMappingDelete(t *testing.T) {
	m := NewMapping()
	m.Set("x", Int(1))
	m.Set("y", Int(2))
	m.Delete("x")

	if m.Has("x") {
		t.Error("x still present after Delete")
	}
	if got := m.Keys(); len(got) != 1 || got[0] != "y" {
		t.Errorf("Keys() = %v, want [y]", got)
	}
	m.Delete("x") // deleting a missing key is a no-op
}

func TestValueEqual(t *testing.T) {
	a := NewMapping()
	a.Set("n", Int(1))
	a.Set("l", List(String("x"), Bool(true)))

	b := a.Copy()
	if !Map(a).Equal(Map(b)) {
		t.Errorf("copy not equal: %#v vs %#v", Map(a), Map(b))
	}

	b.Set("n", Int(2))
	if Map(a).Equal(Map(b)) {
		t.Error("mappings with different values compare equal")
	}

	c := NewMapping()
	c.Set("l", List(String("x"), Bool(true)))
	c.Set("n", Int(1))
	if Map(a).Equal(Map(c)) {
		t.Error("mappings with different key order compare equal")
	}
}

func TestCopyIsDeep(t *testing.T) {
	m := NewMapping()
	inner := NewMapping()
	inner.Set("k", String("v"))
	m.Set("sub", Map(inner))

	c := m.Copy()
	inner.Set("k", String("changed"))

	got, _ := c.Get("sub")
	v, _ := got.MapVal().Get("k")
	if v.StringVal() != "v" {
		t.Errorf("copy shares state: got %q, want %q", v.StringVal(), "v")
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		in   string
		want *Value
	}{
		{"5", Int(5)},
		{"-12", Int(-12)},
		{"2.5", Float(2.5)},
		{"2.0", Float(2.0)},
		{"true", Bool(true)},
		{"True", Bool(true)},
		{"no", Bool(false)},
		{"null", Null()},
		{"~", Null()},
		{"hello", String("hello")},
		{"01x", String("01x")},
		{"[1, 2]", List(Int(1), Int(2))},
		{"[]", List()},
		{"['a', 'b']", List(String("a"), String("b"))},
	}
	for _, tt := range tests {
		got := Infer(tt.in)
		if !got.Equal(tt.want) {
			t.Errorf("Infer(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("1, two, 3.5")
	want := List(Int(1), String("two"), Float(3.5))
	if !got.Equal(want) {
		t.Errorf("SplitList = %#v, want %#v", got, want)
	}

	if got := SplitList("solo"); !got.Equal(String("solo")) {
		t.Errorf("SplitList(solo) = %#v, want plain string", got)
	}
}

func TestTextRoundTripsThroughInfer(t *testing.T) {
	for _, v := range []*Value{Int(7), Float(2.0), Bool(true), Bool(false), String("plain")} {
		back := Infer(v.Text())
		if !back.Equal(v) {
			t.Errorf("Infer(%q.Text()) = %#v, want %#v", v.Text(), back, v)
		}
	}
}
