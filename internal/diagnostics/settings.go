package diagnostics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings maps each configurable rule to its severity, loaded from a
// YAML file the way the teacher loads its own tool configuration
// (gopkg.in/yaml.v3 appears in the teacher's go.mod for exactly this).
// A rule absent from the file keeps its DefaultSettings severity.
type Settings struct {
	Severities map[Rule]Severity
}

// DefaultSettings mirrors a "basic" type-checking mode: the checks
// spec.md treats as core diagnostics (§4.5's contract violations) default
// to error, the sweep/style checks default to warning.
func DefaultSettings() *Settings {
	return &Settings{Severities: map[Rule]Severity{
		RuleGeneralTypeIssues:          SeverityError,
		RuleUnusedImport:               SeverityWarning,
		RuleUnusedVariable:             SeverityWarning,
		RuleUnusedClass:                SeverityWarning,
		RuleUnusedFunction:             SeverityWarning,
		RuleSelfClsParameterName:       SeverityError,
		RuleIncompatibleMethodOverride: SeverityError,
		RulePrivateUsage:               SeverityWarning,
		RuleUnnecessaryIsInstance:      SeverityWarning,
		RuleReturnType:                 SeverityError,
		RuleCallInDefaultInitializer:   SeverityWarning,
		RuleUnknownParameterType:       SeverityInformation,
		RuleUnknownLambdaType:          SeverityInformation,
	}}
}

// Severity returns the configured severity for rule, defaulting to
// SeverityWarning for a rule the settings file and DefaultSettings both
// omit (an unrecognized rule should still be visible, not silently
// dropped).
func (s *Settings) Severity(rule Rule) Severity {
	if s == nil {
		return DefaultSettings().Severity(rule)
	}
	if sev, ok := s.Severities[rule]; ok {
		return sev
	}
	return SeverityWarning
}

// yamlFile is the on-disk shape: a flat map of rule name to one of
// "error"/"warning"/"information"/"none", the same flat-map-of-strings
// style the teacher's own config loader uses for tool options.
type yamlFile map[string]string

// LoadSettings reads a YAML severities file, starting from
// DefaultSettings and overriding only the rules the file mentions.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading diagnostic settings: %w", err)
	}
	var raw yamlFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing diagnostic settings: %w", err)
	}
	for name, value := range raw {
		sev, err := parseSeverity(value)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		settings.Severities[Rule(name)] = sev
	}
	return settings, nil
}

func parseSeverity(value string) (Severity, error) {
	switch value {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "information":
		return SeverityInformation, nil
	case "none":
		return SeverityNone, nil
	default:
		return SeverityNone, fmt.Errorf("unrecognized severity %q", value)
	}
}
