package analysis

var DefaultRules = []Rule{
	DiagnosticsSpaceAroundAssignment{},
	DiagnosticsSpaceBeforeBody{},
	DiagnosticsSpaceAfterKeyword{},
}

// RuleNames lists the names of DefaultRules.
func RuleNames() []string {
	names := make([]string, 0, len(DefaultRules))
	for _, rule := range DefaultRules {
		names = append(names, rule.Name())
	}
	return names
}
