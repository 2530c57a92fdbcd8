package deadline

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultBusinessDays = 20

var (
	ErrInvalidBusinessDays  = errors.New("business days must be positive")
	ErrDuplicateRule        = errors.New("duplicate jurisdiction rule")
	ErrEmptyJurisdictionKey = errors.New("jurisdiction key must not be empty")
)

//go:embed rules.yaml
var embeddedRules []byte

type Rule struct {
	Jurisdiction string `yaml:"jurisdiction"`
	BusinessDays int    `yaml:"business_days"`
}

type ruleFile struct {
	Jurisdictions []Rule `yaml:"jurisdictions"`
}

// RuleTable is an immutable jurisdiction -> business days mapping.
type RuleTable struct {
	rules       map[string]int
	defaultDays int
}

func NewRuleTable(rules []Rule, defaultDays int) (*RuleTable, error) {
	if defaultDays <= 0 {
		return nil, fmt.Errorf("default window: %w", ErrInvalidBusinessDays)
	}

	table := &RuleTable{
		rules:       make(map[string]int, len(rules)),
		defaultDays: defaultDays,
	}

	for _, r := range rules {
		key := normalizeJurisdiction(r.Jurisdiction)
		if key == "" {
			return nil, ErrEmptyJurisdictionKey
		}
		if r.BusinessDays <= 0 {
			return nil, fmt.Errorf("jurisdiction %q: %w", r.Jurisdiction, ErrInvalidBusinessDays)
		}
		if _, exists := table.rules[key]; exists {
			return nil, fmt.Errorf("jurisdiction %q: %w", r.Jurisdiction, ErrDuplicateRule)
		}
		table.rules[key] = r.BusinessDays
	}

	return table, nil
}

// LoadRuleTable parses the table at path, or the embedded table when path is empty.
func LoadRuleTable(path string, defaultDays int) (*RuleTable, error) {
	data := embeddedRules
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read jurisdiction rules: %w", err)
		}
		data = raw
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse jurisdiction rules: %w", err)
	}

	return NewRuleTable(file.Jurisdictions, defaultDays)
}

// Lookup never fails: unknown jurisdictions resolve to the default window.
func (t *RuleTable) Lookup(jurisdiction string) int {
	days, ok := t.Resolve(jurisdiction)
	if !ok {
		slog.Debug("jurisdiction not in rule table, using default window",
			slog.String("jurisdiction", jurisdiction),
			slog.Int("business_days", days),
		)
	}
	return days
}

// Resolve returns the window and whether the jurisdiction had an explicit rule.
func (t *RuleTable) Resolve(jurisdiction string) (int, bool) {
	if days, ok := t.rules[normalizeJurisdiction(jurisdiction)]; ok {
		return days, true
	}
	return t.defaultDays, false
}

func (t *RuleTable) DefaultDays() int {
	return t.defaultDays
}

func (t *RuleTable) Len() int {
	return len(t.rules)
}

func normalizeJurisdiction(j string) string {
	return strings.ToLower(strings.TrimSpace(j))
}
