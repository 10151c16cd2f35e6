// Package criterion parses PASS/FAIL policy-check results out of free text.
package criterion

import (
	"regexp"
	"sort"
)

// Verdict is the outcome of a single criterion.
type Verdict string

// Verdict values. TRUE/FALSE tokens are folded into PASS/FAIL on parse.
const (
	Pass Verdict = "PASS"
	Fail Verdict = "FAIL"
)

// Name identifies a policy criterion, e.g. LAWFULNESS or SCOPE.
type Name string

// Known criterion names.
const (
	Lawfulness Name = "LAWFULNESS"
	Ethical    Name = "ETHICAL"
	Scope      Name = "SCOPE"
)

// tokenPattern is IDENT '-' RESULT; whitespace after the hyphen is tolerated.
var tokenPattern = regexp.MustCompile(`(\w+)-\s*(PASS|FAIL|TRUE|FALSE)\b`)

// Outcomes maps each criterion found in a policy response to its verdict.
type Outcomes map[Name]Verdict

// Parse extracts every criterion token from text. Text without matching
// tokens yields an empty (non-nil) map. Repeated names keep the last verdict.
func Parse(text string) Outcomes {
	out := make(Outcomes)
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		out[Name(m[1])] = verdictOf(m[2])
	}
	return out
}

func verdictOf(raw string) Verdict {
	switch raw {
	case "PASS", "TRUE":
		return Pass
	default:
		return Fail
	}
}

// Passed reports whether the named criterion is present with a PASS verdict.
func (o Outcomes) Passed(name Name) bool {
	return o[name] == Pass
}

// AnyPassed reports whether at least one of names passed.
func (o Outcomes) AnyPassed(names ...Name) bool {
	for _, n := range names {
		if o.Passed(n) {
			return true
		}
	}
	return false
}

// Strings returns the outcomes as a plain string map, for transport layers.
func (o Outcomes) Strings() map[string]string {
	m := make(map[string]string, len(o))
	for k, v := range o {
		m[string(k)] = string(v)
	}
	return m
}

// Names returns the parsed criterion names in sorted order.
func (o Outcomes) Names() []Name {
	names := make([]Name, 0, len(o))
	for n := range o {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Rename rewrites the criterion name of every token in text through fn and
// leaves all other text untouched.
func Rename(text string, fn func(Name) Name) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		m := tokenPattern.FindStringSubmatchIndex(tok)
		name := tok[m[2]:m[3]]
		return string(fn(Name(name))) + tok[m[3]:]
	})
}
