package stack

import "fmt"

// Severity indicates whether a finding blocks derivation or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks derivation
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single validation result.
type Finding struct {
	Level    string // layer name (empty if stack-level)
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Level == "" {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] level %s: %s", f.Severity, f.Level, f.Message)
}

// Validate runs structural checks on the stack and returns all findings.
// It is read-only and never mutates the stack. Dangling Into references
// are warnings, not errors, because resolution ignores them silently;
// validation is the place where they become visible.
func Validate(s *LayerStack) []Finding {
	var findings []Finding

	for _, name := range s.names {
		level := s.levels[name]

		if level.Thickness < 0 {
			findings = append(findings, Finding{
				Level:    name,
				Message:  fmt.Sprintf("negative thickness %g", level.Thickness),
				Severity: SeverityError,
			})
		}

		if level.Type == Etch {
			if len(level.Into) == 0 {
				findings = append(findings, Finding{
					Level:    name,
					Message:  "etch level has no targets",
					Severity: SeverityWarning,
				})
			}
			for _, target := range level.Into {
				if _, ok := s.levels[target]; !ok {
					findings = append(findings, Finding{
						Level:    name,
						Message:  fmt.Sprintf("etches into unknown level %q", target),
						Severity: SeverityWarning,
					})
				}
			}
		} else {
			if len(level.Into) > 0 {
				findings = append(findings, Finding{
					Level:    name,
					Message:  fmt.Sprintf("into set on %s level, ignored", level.Type),
					Severity: SeverityWarning,
				})
			}
			if level.DerivedLayer != nil {
				findings = append(findings, Finding{
					Level:    name,
					Message:  fmt.Sprintf("derived_layer set on %s level, ignored", level.Type),
					Severity: SeverityWarning,
				})
			}
		}
	}

	return findings
}
