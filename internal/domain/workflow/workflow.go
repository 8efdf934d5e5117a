package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// StepType classifies a guided-form step.
type StepType string

const (
	StepInfo    StepType = "info"
	StepAsk     StepType = "ask"
	StepOCR     StepType = "ocr"
	StepConfirm StepType = "confirm"
	StepSubmit  StepType = "submit"
)

// Rule is a built-in validation rule for an ask step.
type Rule string

const (
	RuleNone     Rule = ""
	RuleRequired Rule = "required"
	RuleNumber   Rule = "number"
	RuleEmail    Rule = "email"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Step is one entry in a workflow definition. Steps are ordered and keys
// are unique within a definition.
type Step struct {
	Index        int      `json:"step"`
	Type         StepType `json:"type"`
	Key          string   `json:"key"`
	Title        string   `json:"title"`
	Prompt       string   `json:"prompt"`
	Validation   Rule     `json:"validation,omitempty"`
	Expression   string   `json:"expression,omitempty"`
	DocumentType string   `json:"documentType,omitempty"`
}

// Definition is an immutable, externally supplied guided workflow.
type Definition struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	EstimatedTime string `json:"estimatedTime"`
	Difficulty    string `json:"difficulty"`
	Steps         []Step `json:"steps"`
}

// StepAt returns the step at the given 0-based index.
func (d *Definition) StepAt(index int) (*Step, bool) {
	if index < 0 || index >= len(d.Steps) {
		return nil, false
	}
	return &d.Steps[index], true
}

// StepByKey returns the step with the given key and its 0-based index.
func (d *Definition) StepByKey(key string) (*Step, int, bool) {
	for i := range d.Steps {
		if d.Steps[i].Key == key {
			return &d.Steps[i], i, true
		}
	}
	return nil, 0, false
}

// StepCount returns the number of steps.
func (d *Definition) StepCount() int {
	return len(d.Steps)
}

// Validate checks structural requirements of a definition.
func Validate(d *Definition) error {
	if d == nil {
		return errors.New("definition is nil")
	}
	if d.ID == "" {
		return errors.New("id is required")
	}
	if d.Name == "" {
		return errors.New("name is required")
	}
	if len(d.Steps) == 0 {
		return errors.New("steps are required")
	}
	seen := make(map[string]struct{})
	for _, step := range d.Steps {
		if step.Key == "" {
			return errors.New("step key is required")
		}
		if _, ok := seen[step.Key]; ok {
			return errors.New("duplicate step key: " + step.Key)
		}
		seen[step.Key] = struct{}{}
		switch step.Type {
		case StepInfo, StepAsk, StepOCR, StepConfirm, StepSubmit:
		default:
			return fmt.Errorf("invalid step type %q for step %s", step.Type, step.Key)
		}
		if step.Expression != "" {
			if _, err := govaluate.NewEvaluableExpression(step.Expression); err != nil {
				return fmt.Errorf("invalid expression for step %s: %w", step.Key, err)
			}
		}
	}
	return nil
}

// ValidationError reports the rules an answer violated for a step.
type ValidationError struct {
	StepKey    string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for step %s: %s", e.StepKey, strings.Join(e.Violations, "; "))
}

// ValidateAnswer checks a raw answer against the step's validation rule
// and optional expression. Returns *ValidationError on violation.
func (s *Step) ValidateAnswer(value string) error {
	var violations []string
	trimmed := strings.TrimSpace(value)

	switch s.Validation {
	case RuleNone:
	case RuleRequired:
		if trimmed == "" {
			violations = append(violations, "value is required")
		}
	case RuleNumber:
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			violations = append(violations, "value must be numeric")
		}
	case RuleEmail:
		if !emailPattern.MatchString(trimmed) {
			violations = append(violations, "value must be a valid email address")
		}
	default:
		violations = append(violations, "unknown validation rule: "+string(s.Validation))
	}

	if s.Expression != "" && len(violations) == 0 {
		ok, err := evaluateExpression(s.Expression, trimmed)
		if err != nil {
			violations = append(violations, "expression error: "+err.Error())
		} else if !ok {
			violations = append(violations, "value does not satisfy: "+s.Expression)
		}
	}

	if len(violations) > 0 {
		return &ValidationError{StepKey: s.Key, Violations: violations}
	}
	return nil
}

// evaluateExpression runs a govaluate expression with the answer bound as
// "value". Numeric answers are bound as float64 so comparisons work.
func evaluateExpression(expression, value string) (bool, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return false, err
	}
	params := map[string]interface{}{"value": value}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		params["value"] = f
	}
	result, err := expr.Evaluate(params)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, errors.New("expression did not evaluate to boolean")
	}
	return b, nil
}
