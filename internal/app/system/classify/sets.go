// internal/app/system/classify/sets.go
package classify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Names of the rule sets the pages look up.
const (
	SetMonthly   = "monthly"
	SetDateRange = "date_range"
	SetSingleDay = "single_day"
	SetAllStores = "single_day_all_stores"
)

// Set is a named collection of Rules.
type Set map[string]Rules

// Defaults returns the built-in rule sets.
func Defaults() Set {
	return Set{
		SetMonthly:   New(Normal, Threshold{4000, High}, Threshold{3700, Medium}),
		SetDateRange: New(Normal, Threshold{400, High}, Threshold{300, Medium}),
		SetSingleDay: New(Normal, Threshold{400, High}, Threshold{300, Medium}),
		SetAllStores: New(Normal, Threshold{140, High}, Threshold{125, Medium}),
	}
}

// Get returns the named rules, or rules that label everything Normal.
func (s Set) Get(name string) Rules {
	if r, ok := s[name]; ok {
		return r
	}
	return New(Normal)
}

// fileRules is the YAML shape of one rule set:
//
//	monthly:
//	  default: normal
//	  thresholds:
//	    - {min: 4000, label: high}
//	    - {min: 3700, label: medium}
type fileRules struct {
	Default    string      `yaml:"default"`
	Thresholds []Threshold `yaml:"thresholds"`
}

// Parse reads rule sets from YAML and merges them over the defaults.
func Parse(r io.Reader) (Set, error) {
	var raw map[string]fileRules
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("classify: parse rules: %w", err)
	}

	set := Defaults()
	for name, fr := range raw {
		for _, t := range fr.Thresholds {
			if t.Label == "" {
				return nil, fmt.Errorf("classify: rule set %q has a threshold without a label", name)
			}
		}
		set[name] = New(fr.Default, fr.Thresholds...)
	}
	return set, nil
}

// Load reads rule sets from a YAML file. An empty path returns Defaults.
func Load(path string) (Set, error) {
	if path == "" {
		return Defaults(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classify: read %s: %w", path, err)
	}
	return Parse(bytes.NewReader(b))
}
