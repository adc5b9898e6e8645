// Package query validates user-supplied conference filters and builds a
// store-neutral query plan from them.
//
// The plan honors the ordered-index restriction inherited from the data
// model: at most one field may carry an inequality condition, because a
// range scan can only be bounded on one dimension at a time.
package query

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/confcentral/confcentral/internal/model"
)

// ErrInvalidFilter is returned for unrecognized fields or operators,
// malformed values, and inequality conditions on more than one field.
var ErrInvalidFilter = errors.New("invalid filter")

// Field is the closed set of filterable conference fields.
type Field int

const (
	FieldNone Field = iota
	FieldCity
	FieldTopic
	FieldMonth
	FieldMaxAttendees
)

// ParseField resolves a wire-level field name.
func ParseField(s string) (Field, error) {
	switch s {
	case "CITY":
		return FieldCity, nil
	case "TOPIC":
		return FieldTopic, nil
	case "MONTH":
		return FieldMonth, nil
	case "MAX_ATTENDEES":
		return FieldMaxAttendees, nil
	default:
		return FieldNone, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, s)
	}
}

// Column returns the conference column the field filters on.
func (f Field) Column() string {
	switch f {
	case FieldCity:
		return "city"
	case FieldTopic:
		return "topics"
	case FieldMonth:
		return "month"
	case FieldMaxAttendees:
		return "max_attendees"
	default:
		return ""
	}
}

// Numeric reports whether the field's values must be integers.
func (f Field) Numeric() bool {
	return f == FieldMonth || f == FieldMaxAttendees
}

// Operator is the closed set of comparison operators.
type Operator int

const (
	OpEQ Operator = iota
	OpGT
	OpGTEQ
	OpLT
	OpLTEQ
	OpNE
)

// ParseOperator resolves a wire-level operator name.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "EQ":
		return OpEQ, nil
	case "GT":
		return OpGT, nil
	case "GTEQ":
		return OpGTEQ, nil
	case "LT":
		return OpLT, nil
	case "LTEQ":
		return OpLTEQ, nil
	case "NE":
		return OpNE, nil
	default:
		return OpEQ, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, s)
	}
}

// SQL returns the operator's SQL spelling.
func (op Operator) SQL() string {
	switch op {
	case OpEQ:
		return "="
	case OpGT:
		return ">"
	case OpGTEQ:
		return ">="
	case OpLT:
		return "<"
	case OpLTEQ:
		return "<="
	case OpNE:
		return "<>"
	default:
		return "="
	}
}

// Inequality reports whether the operator is anything other than
// equality.
func (op Operator) Inequality() bool {
	return op != OpEQ
}

// CompareStrings evaluates the operator against two strings.
func (op Operator) CompareStrings(a, b string) bool {
	switch op {
	case OpEQ:
		return a == b
	case OpGT:
		return a > b
	case OpGTEQ:
		return a >= b
	case OpLT:
		return a < b
	case OpLTEQ:
		return a <= b
	case OpNE:
		return a != b
	default:
		return false
	}
}

// CompareInts evaluates the operator against two integers.
func (op Operator) CompareInts(a, b int) bool {
	switch op {
	case OpEQ:
		return a == b
	case OpGT:
		return a > b
	case OpGTEQ:
		return a >= b
	case OpLT:
		return a < b
	case OpLTEQ:
		return a <= b
	case OpNE:
		return a != b
	default:
		return false
	}
}

// Condition is one validated filter: a field, an operator, and a value
// already coerced to the field's type (string or int).
type Condition struct {
	Field Field
	Op    Operator
	Str   string // set for string fields
	Int   int    // set for numeric fields
}

// Value returns the coerced value as a query argument.
func (c Condition) Value() any {
	if c.Field.Numeric() {
		return c.Int
	}
	return c.Str
}

// Plan is a validated, ordered query over conferences. Results sort by
// the inequality field first when one is present, then by name.
type Plan struct {
	Conditions []Condition

	// Inequality is the single field carrying a non-equality condition,
	// or FieldNone.
	Inequality Field
}

// Build parses, validates and coerces the supplied filters into a Plan.
// Order of conditions is preserved.
func Build(filters []model.Filter) (Plan, error) {
	plan := Plan{Inequality: FieldNone}

	for _, f := range filters {
		field, err := ParseField(f.Field)
		if err != nil {
			return Plan{}, err
		}
		op, err := ParseOperator(f.Operator)
		if err != nil {
			return Plan{}, err
		}

		cond := Condition{Field: field, Op: op}
		if field.Numeric() {
			n, err := strconv.Atoi(f.Value)
			if err != nil {
				return Plan{}, fmt.Errorf("%w: field %s requires an integer value, got %q",
					ErrInvalidFilter, f.Field, f.Value)
			}
			cond.Int = n
		} else {
			cond.Str = f.Value
		}

		if op.Inequality() {
			if plan.Inequality != FieldNone && plan.Inequality != field {
				return Plan{}, fmt.Errorf("%w: inequality filter is allowed on only one field",
					ErrInvalidFilter)
			}
			plan.Inequality = field
		}

		plan.Conditions = append(plan.Conditions, cond)
	}
	return plan, nil
}

// Matches evaluates the plan against a conference in memory. The topic
// condition matches when any element of the topics list satisfies it.
func (p Plan) Matches(c *model.Conference) bool {
	for _, cond := range p.Conditions {
		var ok bool
		switch cond.Field {
		case FieldCity:
			ok = cond.Op.CompareStrings(c.City, cond.Str)
		case FieldTopic:
			for _, topic := range c.Topics {
				if cond.Op.CompareStrings(topic, cond.Str) {
					ok = true
					break
				}
			}
		case FieldMonth:
			ok = cond.Op.CompareInts(c.Month, cond.Int)
		case FieldMaxAttendees:
			ok = cond.Op.CompareInts(c.MaxAttendees, cond.Int)
		}
		if !ok {
			return false
		}
	}
	return true
}

// Less orders two conferences per the plan's sort: inequality field
// ascending first when present, name ascending as the tiebreak.
func (p Plan) Less(a, b *model.Conference) bool {
	switch p.Inequality {
	case FieldCity:
		if a.City != b.City {
			return a.City < b.City
		}
	case FieldMonth:
		if a.Month != b.Month {
			return a.Month < b.Month
		}
	case FieldMaxAttendees:
		if a.MaxAttendees != b.MaxAttendees {
			return a.MaxAttendees < b.MaxAttendees
		}
	}
	return a.Name < b.Name
}
