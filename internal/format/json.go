package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dtillman/confmorph/internal/value"
)

// JSON maps the value model directly onto JSON. Parsing goes through
// gjson, whose ForEach walks object members in document order, which
// keeps mapping keys stable. Output is pretty-printed with 4-space
// indentation and a trailing newline.
type JSON struct{}

func (*JSON) Parse(text string) (*value.Value, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("parsing json: invalid document")
	}
	return jsonValue(gjson.Parse(text)), nil
}

func jsonValue(r gjson.Result) *value.Value {
	switch {
	case r.IsObject():
		m := value.NewMapping()
		r.ForEach(func(k, v gjson.Result) bool {
			m.Set(k.String(), jsonValue(v))
			return true
		})
		return value.Map(m)
	case r.IsArray():
		var elems []*value.Value
		r.ForEach(func(_, v gjson.Result) bool {
			elems = append(elems, jsonValue(v))
			return true
		})
		return value.List(elems...)
	}

	switch r.Type {
	case gjson.Null:
		return value.Null()
	case gjson.True:
		return value.Bool(true)
	case gjson.False:
		return value.Bool(false)
	case gjson.Number:
		if strings.ContainsAny(r.Raw, ".eE") {
			return value.Float(r.Num)
		}
		return value.Int(int64(r.Int()))
	default:
		return value.String(r.Str)
	}
}

func (*JSON) Serialize(v *value.Value) (string, error) {
	var sb strings.Builder
	if err := writeJSON(&sb, v, 0); err != nil {
		return "", err
	}
	sb.WriteByte('\n')
	return sb.String(), nil
}

func writeJSON(sb *strings.Builder, v *value.Value, depth int) error {
	pad := strings.Repeat(" ", 4*(depth+1))
	closer := strings.Repeat(" ", 4*depth)

	switch v.Kind() {
	case value.KindNull:
		sb.WriteString("null")
	case value.KindBool:
		if v.BoolVal() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case value.KindInt, value.KindFloat:
		sb.WriteString(v.Text())
	case value.KindString:
		return writeJSONString(sb, v.StringVal())
	case value.KindList:
		if len(v.ListVal()) == 0 {
			sb.WriteString("[]")
			return nil
		}
		sb.WriteString("[\n")
		for i, e := range v.ListVal() {
			sb.WriteString(pad)
			if err := writeJSON(sb, e, depth+1); err != nil {
				return err
			}
			if i < len(v.ListVal())-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(closer)
		sb.WriteByte(']')
	case value.KindMapping:
		m := v.MapVal()
		if m.Len() == 0 {
			sb.WriteString("{}")
			return nil
		}
		sb.WriteString("{\n")
		for i, k := range m.Keys() {
			sb.WriteString(pad)
			if err := writeJSONString(sb, k); err != nil {
				return err
			}
			sb.WriteString(": ")
			e, _ := m.Get(k)
			if err := writeJSON(sb, e, depth+1); err != nil {
				return err
			}
			if i < m.Len()-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(closer)
		sb.WriteByte('}')
	}
	return nil
}

func writeJSONString(sb *strings.Builder, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding json string: %w", err)
	}
	sb.Write(b)
	return nil
}
