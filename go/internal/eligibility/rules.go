package eligibility

import (
	"fmt"
	"os"

	"github.com/mcdev12/gaffer/go/internal/models"
	"gopkg.in/yaml.v3"
)

// Rule is the accumulation rule for one competition handler type.
type Rule struct {
	// YellowThreshold bans the player at every multiple of accumulated
	// yellow cards in the competition.
	YellowThreshold int `yaml:"yellow_threshold"`
	// YellowBanMatches is the ban length when the threshold trips.
	YellowBanMatches int `yaml:"yellow_ban_matches"`
	// RedBanMatches is the ban length for a direct or second-yellow red.
	RedBanMatches int `yaml:"red_ban_matches"`
}

// RuleTable resolves suspension rules per competition handler type, once per
// competition, and is passed down instead of string matching at call sites.
type RuleTable map[models.HandlerType]Rule

// DefaultRuleTable returns the compiled-in accumulation rules: a league bans
// at every 5th yellow, cup formats at every 3rd; reds ban for one match.
func DefaultRuleTable() RuleTable {
	return RuleTable{
		models.HandlerTypeLeague:      {YellowThreshold: 5, YellowBanMatches: 1, RedBanMatches: 1},
		models.HandlerTypeKnockoutCup: {YellowThreshold: 3, YellowBanMatches: 1, RedBanMatches: 1},
		models.HandlerTypeGroupCup:    {YellowThreshold: 3, YellowBanMatches: 1, RedBanMatches: 1},
		models.HandlerTypeSwiss:       {YellowThreshold: 3, YellowBanMatches: 1, RedBanMatches: 1},
	}
}

// Resolve returns the rule for a handler type.
func (t RuleTable) Resolve(ht models.HandlerType) (Rule, error) {
	rule, ok := t[ht]
	if !ok {
		return Rule{}, fmt.Errorf("no suspension rule for handler type %q", ht)
	}
	return rule, nil
}

type rulesFile struct {
	Suspensions map[string]Rule `yaml:"suspensions"`
}

// LoadRuleTable reads a rule table from a YAML file, overlaying the defaults.
func LoadRuleTable(path string) (RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	table := DefaultRuleTable()
	for key, rule := range file.Suspensions {
		ht := models.HandlerType(key)
		if _, ok := table[ht]; !ok {
			return nil, fmt.Errorf("unknown handler type %q in rules file", key)
		}
		table[ht] = rule
	}
	return table, nil
}
