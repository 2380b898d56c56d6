package value

import (
	"strconv"
	"strings"
)

// Infer reinterprets raw scalar text as a typed value: booleans
// (true/false/yes/no, any case), integers, floats, null words, and
// bracketed lists. Anything else stays a string, byte-identical.
func Infer(s string) *Value {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "null", "none", "~":
		return Null()
	case "true", "yes":
		return Bool(true)
	case "false", "no":
		return Bool(false)
	}
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return Float(f)
	}
	if len(t) >= 2 && t[0] == '[' && t[len(t)-1] == ']' {
		inner := t[1 : len(t)-1]
		if strings.TrimSpace(inner) == "" {
			return List()
		}
		parts := strings.Split(inner, ",")
		elems := make([]*Value, len(parts))
		for i, p := range parts {
			elems[i] = Infer(Unquote(strings.TrimSpace(p)))
		}
		return List(elems...)
	}
	return String(s)
}

// SplitList parses the comma-joined scalar text used by the INI, shell,
// and XML formats: text containing commas becomes a list of inferred
// scalars, anything else a single inferred scalar.
func SplitList(s string) *Value {
	if !strings.Contains(s, ",") {
		return Infer(s)
	}
	parts := strings.Split(s, ",")
	elems := make([]*Value, len(parts))
	for i, p := range parts {
		elems[i] = Infer(strings.TrimSpace(p))
	}
	return List(elems...)
}

// Unquote strips one pair of matching single or double quotes, leaving
// everything else alone.
func Unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
