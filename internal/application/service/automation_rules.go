package service

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"gopkg.in/yaml.v3"
)

// Condition is an extra predicate a rule can place on the deal and the entity
// that fired the trigger. related may be nil.
type Condition func(deal *entity.Deal, related any) bool

// Rule moves a deal to ToStage when Trigger fires. FromStage, when set, only
// lets the rule apply while the deal sits in that stage. Stage names are
// compared case-insensitively.
type Rule struct {
	Trigger   enum.Trigger
	FromStage string
	ToStage   string
	Condition Condition

	// ConditionName is the registry name the condition was loaded from
	ConditionName string
}

// Matches reports whether the rule applies to trigger for a deal currently in
// stage currentStage
func (r Rule) Matches(trigger enum.Trigger, currentStage string, deal *entity.Deal, related any) bool {
	if r.Trigger != trigger {
		return false
	}
	if r.FromStage != "" && !strings.EqualFold(r.FromStage, currentStage) {
		return false
	}
	if r.Condition != nil && !r.Condition(deal, related) {
		return false
	}
	return true
}

// Rules is an ordered rule table. Earlier rules win, so the most specific
// rules go first.
type Rules []Rule

// Match returns the first rule that applies, or nil
func (rs Rules) Match(trigger enum.Trigger, currentStage string, deal *entity.Deal, related any) *Rule {
	for i := range rs {
		if rs[i].Matches(trigger, currentStage, deal, related) {
			return &rs[i]
		}
	}
	return nil
}

// DefaultRules returns the standard sales policy. quote_accepted has no rule
// of its own: accepting a quote converts it to an order, which fires
// order_created.
func DefaultRules() Rules {
	return Rules{
		{Trigger: enum.TriggerQuoteCreated, FromStage: "Prospecting", ToStage: "Proposal"},
		{Trigger: enum.TriggerQuoteDeclined, ToStage: "Lost"},
		{Trigger: enum.TriggerOrderCreated, ToStage: "Won"},
		{Trigger: enum.TriggerOrderCancelled, ToStage: "Negotiation"},
		{Trigger: enum.TriggerInvoiceCreated, ToStage: "Won"},
		{Trigger: enum.TriggerInvoicePaid, ToStage: "Won"},
	}
}

// Conditions that rule files can reference by name
var Conditions = map[string]Condition{
	"quote_has_lines": func(_ *entity.Deal, related any) bool {
		quote, ok := related.(*entity.Quote)
		return ok && len(quote.Lines) > 0
	},
	"order_not_backorder": func(_ *entity.Deal, related any) bool {
		order, ok := related.(*entity.Order)
		return ok && order.Status != enum.OrderStatusBackorder
	},
}

type ruleFile struct {
	Rules []ruleDefinition `yaml:"rules"`
}

type ruleDefinition struct {
	Trigger   string `yaml:"trigger"`
	FromStage string `yaml:"from_stage"`
	ToStage   string `yaml:"to_stage"`
	Condition string `yaml:"condition"`
}

// ParseRulesYAML decodes a rule table of the form
//
//	rules:
//	  - trigger: quote_created
//	    from_stage: Prospecting
//	    to_stage: Proposal
func ParseRulesYAML(data []byte) (Rules, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("rules: payload is empty")
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules: no rules defined")
	}

	rules := make(Rules, 0, len(file.Rules))
	for i, def := range file.Rules {
		trigger := enum.Trigger(strings.TrimSpace(def.Trigger))
		if !trigger.IsValid() {
			return nil, fmt.Errorf("rules[%d]: unknown trigger %q", i, def.Trigger)
		}
		toStage := strings.TrimSpace(def.ToStage)
		if toStage == "" {
			return nil, fmt.Errorf("rules[%d]: to_stage is required", i)
		}

		rule := Rule{
			Trigger:   trigger,
			FromStage: strings.TrimSpace(def.FromStage),
			ToStage:   toStage,
		}
		if def.Condition != "" {
			cond, ok := Conditions[def.Condition]
			if !ok {
				return nil, fmt.Errorf("rules[%d]: unknown condition %q", i, def.Condition)
			}
			rule.Condition = cond
			rule.ConditionName = def.Condition
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadRulesFile reads a rule table from a YAML file
func LoadRulesFile(path string) (Rules, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	rules, err := ParseRulesYAML(content)
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return rules, nil
}
