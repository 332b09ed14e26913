package stack

import (
	"strings"
	"testing"

	"github.com/chazu/epitaxy/pkg/layout"
)

func findingWith(findings []Finding, substr string) *Finding {
	for i := range findings {
		if strings.Contains(findings[i].Message, substr) {
			return &findings[i]
		}
	}
	return nil
}

func TestValidateCleanStack(t *testing.T) {
	if findings := Validate(soiStack()); len(findings) != 0 {
		t.Errorf("Validate() = %v, want no findings", findings)
	}
}

func TestValidateDanglingInto(t *testing.T) {
	e := layout.L(2, 0)
	s := New()
	s.Add("trench", &LayerLevel{Layer: &e, Thickness: 1, Type: Etch, Into: []string{"ghost"}})

	findings := Validate(s)
	f := findingWith(findings, `unknown level "ghost"`)
	if f == nil {
		t.Fatalf("no dangling-into finding in %v", findings)
	}
	if f.Severity != SeverityWarning {
		t.Errorf("severity = %v, want warning (resolution ignores dangling refs)", f.Severity)
	}
	if f.Level != "trench" {
		t.Errorf("finding level = %q, want trench", f.Level)
	}
}

func TestValidateEtchWithoutTargets(t *testing.T) {
	e := layout.L(2, 0)
	s := New()
	s.Add("idle", &LayerLevel{Layer: &e, Thickness: 1, Type: Etch})

	if f := findingWith(Validate(s), "no targets"); f == nil {
		t.Error("expected etch-without-targets warning")
	}
}

func TestValidateIntoOnGrowLevel(t *testing.T) {
	core := layout.L(1, 0)
	s := New()
	s.Add("core", &LayerLevel{Layer: &core, Thickness: 0.22, Type: Grow, Into: []string{"clad"}})

	f := findingWith(Validate(s), "into set on grow level")
	if f == nil {
		t.Fatal("expected into-on-grow warning")
	}
	if f.Severity != SeverityWarning {
		t.Errorf("severity = %v, want warning", f.Severity)
	}
}

func TestValidateNegativeThickness(t *testing.T) {
	core := layout.L(1, 0)
	s := New()
	s.Add("core", &LayerLevel{Layer: &core, Thickness: -0.1, Type: Grow})

	f := findingWith(Validate(s), "negative thickness")
	if f == nil {
		t.Fatal("expected negative-thickness finding")
	}
	if f.Severity != SeverityError {
		t.Errorf("severity = %v, want error", f.Severity)
	}
}

func TestFindingError(t *testing.T) {
	f := Finding{Level: "core", Message: "boom", Severity: SeverityError}
	want := "[error] level core: boom"
	if f.Error() != want {
		t.Errorf("Error() = %q, want %q", f.Error(), want)
	}

	f = Finding{Message: "stack-wide", Severity: SeverityWarning}
	want = "[warning] stack-wide"
	if f.Error() != want {
		t.Errorf("Error() = %q, want %q", f.Error(), want)
	}
}
