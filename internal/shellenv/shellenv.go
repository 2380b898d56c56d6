// Package shellenv extracts variables from legacy shell config
// scripts by sourcing them in a subshell and diffing the variable
// environment before and after. The subprocess is a blocking,
// single-shot call: failures surface unmodified and nothing is
// retried.
package shellenv

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Var is one variable captured from the sourced script, in definition
// order as reported by the environment diff.
type Var struct {
	Name  string
	Value string
}

// Capture sources a script (a file path when isFile, otherwise literal
// script text) and returns the variables it defined or changed.
func Capture(ctx context.Context, script string, isFile bool) ([]Var, error) {
	source := fmt.Sprintf("eval %q", script)
	if isFile {
		source = ". " + script
	}

	code := fmt.Sprintf(`
t1="$(mktemp)"
t2="$(mktemp)"
(set -o posix; set) > "$t1"
{ %s; set +x; } &>/dev/null
(set -o posix; set) > "$t2"
diff "$t1" "$t2" | grep "> " | cut -c 3-
rm -f "$t1" "$t2"
`, source)

	cmd := exec.CommandContext(ctx, "bash", "-c", code)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("sourcing shell config: %w", err)
	}

	var vars []Var
	for _, line := range strings.Split(string(output), "\n") {
		name, val, ok := strings.Cut(line, "=")
		if !ok || name == "" {
			continue
		}
		// The diff includes bookkeeping variables the snapshot
		// itself changes.
		if name == "t1" || name == "t2" || name == "PIPESTATUS" || name == "_" {
			continue
		}
		vars = append(vars, Var{Name: name, Value: unquote(val)})
	}
	return vars, nil
}

// unquote strips the single quotes `set` wraps around values that
// need them.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], `'\''`, "'")
	}
	return s
}
