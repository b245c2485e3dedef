// Package validation checks submitted records against declarative rule sets.
//
// A RuleSet is a JSON schema plus a table of human readable messages keyed by
// field and rule. Validating a record yields either nil or an *Error holding
// one Violation per failed rule, ordered by field declaration and rule.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Rule identifiers carried by violations.
const (
	RuleRequired = "required"
	RuleType     = "type"
	RuleMin      = "min"
	RuleMax      = "max"
	RulePattern  = "pattern"
	RuleFormat   = "format"
	RuleEnum     = "enum"
)

var ruleByErrorType = map[string]string{
	"required":     RuleRequired,
	"invalid_type": RuleType,
	"string_gte":   RuleMin,
	"string_lte":   RuleMax,
	"pattern":      RulePattern,
	"format":       RuleFormat,
	"enum":         RuleEnum,
}

var ruleRank = map[string]int{
	RuleRequired: 0,
	RuleType:     1,
	RuleMin:      2,
	RuleMax:      3,
	RulePattern:  4,
	RuleFormat:   5,
	RuleEnum:     6,
}

type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error reports every rule a record failed.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// HasViolation reports whether field failed rule.
func (e *Error) HasViolation(field, rule string) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Rule == rule {
			return true
		}
	}
	return false
}

// Field declares a validated field and its messages by rule.
type Field struct {
	Name     string
	Messages map[string]string
}

type RuleSet struct {
	name     string
	schema   *gojsonschema.Schema
	order    map[string]int
	messages map[string]map[string]string
}

// NewRuleSet compiles schema. Fields are listed in the order violations
// should be reported.
func NewRuleSet(name, schema string, fields ...Field) (*RuleSet, error) {
	registerFormats()
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile %s rules: %w", name, err)
	}
	rs := &RuleSet{
		name:     name,
		schema:   compiled,
		order:    make(map[string]int, len(fields)),
		messages: make(map[string]map[string]string, len(fields)),
	}
	for i, f := range fields {
		rs.order[f.Name] = i
		rs.messages[f.Name] = f.Messages
	}
	return rs, nil
}

func MustRuleSet(name, schema string, fields ...Field) *RuleSet {
	rs, err := NewRuleSet(name, schema, fields...)
	if err != nil {
		panic(err)
	}
	return rs
}

func (rs *RuleSet) Name() string { return rs.name }

// Validate returns nil when record satisfies every rule, an *Error listing the
// violations otherwise. Fields the rule set does not declare are ignored.
func (rs *RuleSet) Validate(record map[string]interface{}) error {
	if record == nil {
		record = map[string]interface{}{}
	}
	result, err := rs.schema.Validate(gojsonschema.NewGoLoader(record))
	if err != nil {
		return fmt.Errorf("validate %s: %w", rs.name, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		field := fieldOf(re)
		rule, ok := ruleByErrorType[re.Type()]
		if !ok {
			rule = re.Type()
		}
		violations = append(violations, Violation{
			Field:   field,
			Rule:    rule,
			Message: rs.message(field, rule, re.Description()),
		})
	}
	sort.SliceStable(violations, func(i, j int) bool {
		oi, oj := rs.rank(violations[i].Field), rs.rank(violations[j].Field)
		if oi != oj {
			return oi < oj
		}
		return rankOf(violations[i].Rule) < rankOf(violations[j].Rule)
	})
	return &Error{Violations: violations}
}

// Reject builds an *Error for a single rule failure found outside the
// schema, worded with the rule set's message for that field and rule.
func (rs *RuleSet) Reject(field, rule string) *Error {
	return &Error{Violations: []Violation{{
		Field:   field,
		Rule:    rule,
		Message: rs.message(field, rule, field+" is invalid"),
	}}}
}

func (rs *RuleSet) message(field, rule, fallback string) string {
	if msg, ok := rs.messages[field][rule]; ok {
		return msg
	}
	return fallback
}

func (rs *RuleSet) rank(field string) int {
	if i, ok := rs.order[field]; ok {
		return i
	}
	return len(rs.order)
}

func rankOf(rule string) int {
	if r, ok := ruleRank[rule]; ok {
		return r
	}
	return len(ruleRank)
}

// fieldOf resolves the offending property. Required errors are raised on the
// parent object and name the missing property in their details.
func fieldOf(re gojsonschema.ResultError) string {
	if p, ok := re.Details()["property"].(string); ok && p != "" {
		return p
	}
	return strings.TrimPrefix(re.Field(), gojsonschema.STRING_ROOT_SCHEMA_PROPERTY+".")
}
