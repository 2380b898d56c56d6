package template

import (
	"path/filepath"

	"github.com/dtillman/confmorph/internal/value"
)

// pathJoin combines a list of path segments into one platform path.
// Usable as {{ parts | path_join }} or {{ path_join(parts) }}.
func pathJoin(args []*value.Value) (*value.Value, error) {
	if len(args) == 0 {
		return nil, errValue("path_join requires at least one argument")
	}

	var segs []string
	if len(args) == 1 && args[0].Kind() == value.KindList {
		for _, e := range args[0].ListVal() {
			if e.Kind() == value.KindMapping || e.Kind() == value.KindList {
				return nil, errType("path_join segment must be a scalar, not %s", e.Kind())
			}
			segs = append(segs, e.Text())
		}
	} else {
		for _, a := range args {
			if a.Kind() == value.KindMapping || a.Kind() == value.KindList {
				return nil, errType("path_join segment must be a scalar, not %s", a.Kind())
			}
			segs = append(segs, a.Text())
		}
	}
	return value.String(filepath.Join(segs...)), nil
}

// daysAgo formats the date N days before evaluation time as
// YYYYMMDD00, the cycle-hour-zero stamp used by forecast workflows.
func (e *Engine) daysAgo(args []*value.Value) (*value.Value, error) {
	if len(args) != 1 {
		return nil, errValue("days_ago requires exactly one argument")
	}
	var n int
	switch args[0].Kind() {
	case value.KindInt:
		n = int(args[0].IntVal())
	case value.KindFloat:
		n = int(args[0].FloatVal())
	default:
		return nil, errType("days_ago argument must be a number, not %s", args[0].Kind())
	}
	d := e.now().AddDate(0, 0, -n)
	return value.String(d.Format("20060102") + "00"), nil
}
