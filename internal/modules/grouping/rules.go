// Package grouping defines the volatility quartiles and the nested group rules
// that decide which security-years a risk category may be recommended.
package grouping

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aristath/propensity/internal/modules/profile"
)

// Rule is one of the nested selection rules
type Rule int

// Rules from the narrowest to the widest
const (
	Class0 Rule = iota
	Class1
	Class2
	Class3
)

// Membership is the pair of allowed sets a rule filters on
type Membership struct {
	TargetClasses []int `json:"target_classes"`
	VolQuartiles  []int `json:"vol_quartiles"`
}

var memberships = [...]Membership{
	Class0: {TargetClasses: []int{0}, VolQuartiles: []int{1}},
	Class1: {TargetClasses: []int{0, 1}, VolQuartiles: []int{1, 2}},
	Class2: {TargetClasses: []int{0, 1, 2}, VolQuartiles: []int{1, 2, 3}},
	Class3: {TargetClasses: []int{0, 1, 2, 3}, VolQuartiles: []int{1, 2, 3, 4}},
}

var ruleLabels = [...]string{"Class 0 (Q1)", "Class 1 (Q1~Q2)", "Class 2 (Q1~Q3)", "Class 3 (Q1~Q4)"}

// Rules returns every rule from narrowest to widest
func Rules() []Rule {
	return []Rule{Class0, Class1, Class2, Class3}
}

// Valid reports whether r is a defined rule
func (r Rule) Valid() bool {
	return r >= Class0 && r <= Class3
}

// Label returns the display label, e.g. "Class 1 (Q1~Q2)"
func (r Rule) Label() string {
	if !r.Valid() {
		return fmt.Sprintf("Rule(%d)", int(r))
	}
	return ruleLabels[r]
}

func (r Rule) String() string {
	return fmt.Sprintf("class%d", int(r))
}

// Membership returns the allowed sets of the rule
func (r Rule) Membership() Membership {
	if !r.Valid() {
		return Membership{}
	}
	m := memberships[r]
	return Membership{
		TargetClasses: append([]int(nil), m.TargetClasses...),
		VolQuartiles:  append([]int(nil), m.VolQuartiles...),
	}
}

// Matches reports whether a security-year with the given target class and
// volatility quartile belongs to the rule
func (r Rule) Matches(targetClass, volQuartile int) bool {
	if !r.Valid() {
		return false
	}
	// Each rule admits classes 0..r and quartiles 1..r+1.
	return targetClass >= 0 && targetClass <= int(r) &&
		volQuartile >= 1 && volQuartile <= int(r)+1
}

// ParseRule accepts "class0".."class3" or a bare digit
func ParseRule(s string) (Rule, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "class")
	s = strings.TrimSpace(s)
	if len(s) == 1 && s[0] >= '0' && s[0] <= '3' {
		return Rule(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("unknown group rule %q", s)
}

// MarshalText encodes the rule as "classN"
func (r Rule) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown group rule %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText is the inverse of MarshalText
func (r *Rule) UnmarshalText(text []byte) error {
	parsed, err := ParseRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalJSON encodes the rule as "classN"
func (r Rule) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

var categoryRules = map[profile.Category]Rule{
	profile.ModeratelyConservative: Class0,
	profile.Moderate:               Class1,
	profile.ModeratelyAggressive:   Class2,
	profile.Aggressive:             Class3,
}

// RuleFor returns the rule a category is recommended from. 안정형 has none.
func RuleFor(c profile.Category) (Rule, bool) {
	r, ok := categoryRules[c]
	return r, ok
}
