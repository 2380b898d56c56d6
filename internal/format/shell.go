package format

import (
	"context"
	"strings"

	"github.com/dtillman/confmorph/internal/shellenv"
	"github.com/dtillman/confmorph/internal/value"
)

// Shell handles the legacy shell-variable form. The structured
// variant marks sections with "# [name]" comments and is parsed by
// the INI adapter after a text substitution; plain scripts fall back
// to sourcing in a subshell and diffing the variable environment.
type Shell struct {
	// SourceFile is set by the loader when the input came from a
	// file path, so the fallback can source the file directly.
	SourceFile string
}

func (s *Shell) Parse(text string) (*value.Value, error) {
	structured := strings.ReplaceAll(text, "# [", "[")
	structured = strings.ReplaceAll(structured, "\\\n", " ")

	if hasSectionHeader(structured) {
		v, err := (&INI{}).Parse(structured)
		if err == nil {
			return v, nil
		}
		// A shell test like [ -n "$X" ] looks like a section header.
		// Scripts that fail the structured parse are sourced instead.
	}
	return s.parseBySourcing(text)
}

// hasSectionHeader reports whether any line opens an INI section,
// which is how the structured variant is recognized.
func hasSectionHeader(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "[") {
			return true
		}
	}
	return false
}

// parseBySourcing runs the environment-diff fallback. The resulting
// mapping is flat: plain variable names to comma-split values.
func (s *Shell) parseBySourcing(text string) (*value.Value, error) {
	script, isFile := text, false
	if s.SourceFile != "" {
		script, isFile = s.SourceFile, true
	}
	vars, err := shellenv.Capture(context.Background(), script, isFile)
	if err != nil {
		return nil, err
	}

	m := value.NewMapping()
	for _, v := range vars {
		m.Set(v.Name, value.SplitList(v.Value))
	}
	return value.Map(m), nil
}

// Serialize renders the structured shell form: "# [section]" comment
// headers with key='value' lines, mirroring the INI writer.
func (*Shell) Serialize(v *value.Value) (string, error) {
	if v.Kind() != value.KindMapping {
		return "", errNotMapping("shell", v)
	}
	return writeINISection(v.MapVal(), "", shellStyle), nil
}
