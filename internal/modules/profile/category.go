// Package profile classifies propensity scores into risk categories and carries
// the per-category access rules and descriptions.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a category code or label cannot be parsed
var ErrUnknownCategory = errors.New("unknown risk category")

// Category is one of the five ordered investment-risk categories
type Category int

// Categories in ascending order of risk appetite
const (
	Conservative           Category = iota // 안정형
	ModeratelyConservative                 // 안정추구형
	Moderate                               // 위험중립형
	ModeratelyAggressive                   // 적극투자형
	Aggressive                             // 공격투자형
)

var categoryLabels = [...]string{"안정형", "안정추구형", "위험중립형", "적극투자형", "공격투자형"}

var categoryCodes = [...]string{
	"conservative",
	"moderately_conservative",
	"moderate",
	"moderately_aggressive",
	"aggressive",
}

// Categories returns every category in ascending order
func Categories() []Category {
	return []Category{Conservative, ModeratelyConservative, Moderate, ModeratelyAggressive, Aggressive}
}

// Valid reports whether c is one of the five categories
func (c Category) Valid() bool {
	return c >= Conservative && c <= Aggressive
}

// Label returns the Korean display label
func (c Category) Label() string {
	if !c.Valid() {
		return ""
	}
	return categoryLabels[c]
}

// Code returns the stable identifier used on the wire and in URLs
func (c Category) Code() string {
	if !c.Valid() {
		return ""
	}
	return categoryCodes[c]
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryLabels[c]
}

// ParseCategory accepts either the wire code or the Korean label
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for i := range categoryCodes {
		if strings.EqualFold(s, categoryCodes[i]) || s == categoryLabels[i] {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// MarshalJSON encodes the category as its wire code
func (c Category) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return json.Marshal(c.Code())
}

// UnmarshalJSON decodes a wire code or Korean label
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText lets categories be used as map keys in JSON output
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.Code()), nil
}

// UnmarshalText is the inverse of MarshalText
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
