package schema

import (
	"strings"
	"testing"

	"github.com/dtillman/confmorph/internal/value"
)

const taskSchema = `{
	"type": "object",
	"required": ["name", "threads"],
	"properties": {
		"name": {"type": "string"},
		"threads": {"type": "integer", "minimum": 1}
	}
}`

func taskDoc(name *value.Value, threads *value.Value) *value.Value {
	m := value.NewMapping()
	m.Set("name", name)
	m.Set("threads", threads)
	return value.Map(m)
}

func TestValidateOK(t *testing.T) {
	res, err := Validate(taskDoc(value.String("fcst"), value.Int(4)), taskSchema)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Fatalf("valid document rejected: %s", res.Error())
	}
}

func TestValidateViolations(t *testing.T) {
	res, err := Validate(taskDoc(value.Int(1), value.Int(0)), taskSchema)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Fatal("invalid document accepted")
	}
	if len(res.Problems) != 2 {
		t.Fatalf("got %d problems (%s), want 2", len(res.Problems), res.Error())
	}

	msg := res.Error()
	if !strings.Contains(msg, "/name") || !strings.Contains(msg, "/threads") {
		t.Errorf("problems = %q, want locations /name and /threads", msg)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	m := value.NewMapping()
	m.Set("name", value.String("fcst"))
	res, err := Validate(value.Map(m), taskSchema)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Fatal("document missing required key accepted")
	}
}

func TestValidateBadSchema(t *testing.T) {
	if _, err := Validate(value.Null(), `{"type": 42}`); err == nil {
		t.Error("uncompilable schema accepted")
	}
}
