package dyndata

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/termstore/internal/errs"
)

// ValidatorType names a column validator. The ordinal is stable.
type ValidatorType uint8

const (
	LessThan ValidatorType = iota
	GreaterThan
	LessThanOrEquals
	GreaterThanOrEquals
	Interval
	Regexp
	External
	IsChildOf
	IsKindOf
	ComponentType
	UnknownValidator

	validatorCount
)

var validatorNames = [validatorCount]string{
	LessThan:            "LESS_THAN",
	GreaterThan:         "GREATER_THAN",
	LessThanOrEquals:    "LESS_THAN_OR_EQUALS",
	GreaterThanOrEquals: "GREATER_THAN_OR_EQUALS",
	Interval:            "INTERVAL",
	Regexp:              "REGEXP",
	External:            "EXTERNAL",
	IsChildOf:           "IS_CHILD_OF",
	IsKindOf:            "IS_KIND_OF",
	ComponentType:       "COMPONENT_TYPE",
	UnknownValidator:    "UNKNOWN",
}

func (v ValidatorType) String() string {
	if v < validatorCount {
		return validatorNames[v]
	}
	return fmt.Sprintf("ValidatorType(%d)", v)
}

// ParseValidatorType maps a name such as "INTERVAL" to its ValidatorType.
func ParseValidatorType(name string) (ValidatorType, error) {
	for i, n := range validatorNames {
		if n == name {
			return ValidatorType(i), nil
		}
	}
	return UnknownValidator, errs.Unsupportedf("unknown validator type %q", name)
}

// ErrValidation marks a value rejected by a column validator.
var ErrValidation = errs.New("dynamic value failed validation")

// ExternalValidator evaluates the validators that need knowledge outside the
// value itself: EXTERNAL, IS_CHILD_OF, IS_KIND_OF and COMPONENT_TYPE.
type ExternalValidator interface {
	ValidateDynamic(ctx context.Context, validator ValidatorType, value, param Data) error
}

// Validate checks value against the validator with its parameter. Absent
// values pass; required-ness is checked by the column, not the validator.
// Delegated validators without an ExternalValidator are unsupported.
func (v ValidatorType) Validate(ctx context.Context, value, param Data, ext ExternalValidator) error {
	if value == nil {
		return nil
	}
	switch v {
	case LessThan, GreaterThan, LessThanOrEquals, GreaterThanOrEquals:
		c, err := compareNumbers(value, param)
		if err != nil {
			return err
		}
		var ok bool
		switch v {
		case LessThan:
			ok = c < 0
		case GreaterThan:
			ok = c > 0
		case LessThanOrEquals:
			ok = c <= 0
		case GreaterThanOrEquals:
			ok = c >= 0
		}
		if !ok {
			return rejected(v, value, param)
		}
		return nil
	case Interval:
		s, ok := param.(String)
		if !ok {
			return errs.Configurationf("INTERVAL parameter must be STRING, got %s", TypeOf(param))
		}
		in, err := parseInterval(string(s))
		if err != nil {
			return err
		}
		contains, err := in.contains(value)
		if err != nil {
			return err
		}
		if !contains {
			return rejected(v, value, param)
		}
		return nil
	case Regexp:
		pattern, ok := param.(String)
		if !ok {
			return errs.Configurationf("REGEXP parameter must be STRING, got %s", TypeOf(param))
		}
		re, err := regexp.Compile(string(pattern))
		if err != nil {
			return errs.WrapConfiguration(err, "REGEXP parameter %q", string(pattern))
		}
		if !re.MatchString(Format(value)) {
			return rejected(v, value, param)
		}
		return nil
	case External, IsChildOf, IsKindOf, ComponentType:
		if ext == nil {
			return errs.Unsupportedf("%s validation requires an external validator", v)
		}
		return ext.ValidateDynamic(ctx, v, value, param)
	}
	return errs.Unsupportedf("cannot evaluate validator %s", v)
}

func rejected(v ValidatorType, value, param Data) error {
	return errs.Mark(errs.Newf("%s %s %s", Format(value), v, Format(param)), ErrValidation)
}

// number is a numeric value kept exact for integers.
type number struct {
	i     int64
	f     float64
	isInt bool
}

func numberOf(d Data) (number, bool) {
	switch v := d.(type) {
	case Integer:
		return number{i: int64(v), isInt: true}, true
	case Long:
		return number{i: int64(v), isInt: true}, true
	case Nid:
		return number{i: int64(v), isInt: true}, true
	case Float:
		return number{f: float64(v)}, true
	case Double:
		return number{f: float64(v)}, true
	}
	return number{}, false
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func compareNumber(a, b number) int {
	if a.isInt && b.isInt {
		return cmp.Compare(a.i, b.i)
	}
	return cmp.Compare(a.float(), b.float())
}

func compareNumbers(value, param Data) (int, error) {
	a, ok := numberOf(value)
	if !ok {
		return 0, errs.Configurationf("numeric validator applied to %s value", TypeOf(value))
	}
	b, ok := numberOf(param)
	if !ok {
		return 0, errs.Configurationf("numeric validator parameter must be numeric, got %s", TypeOf(param))
	}
	return compareNumber(a, b), nil
}

// interval is a parsed "[low, high)" range. Missing bounds are unbounded.
type interval struct {
	low, high                   *number
	lowInclusive, highInclusive bool
}

func parseInterval(s string) (interval, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return interval{}, errs.Configurationf("malformed interval %q", s)
	}
	var in interval
	switch s[0] {
	case '[':
		in.lowInclusive = true
	case '(':
	default:
		return interval{}, errs.Configurationf("malformed interval %q: must start with [ or (", s)
	}
	switch s[len(s)-1] {
	case ']':
		in.highInclusive = true
	case ')':
	default:
		return interval{}, errs.Configurationf("malformed interval %q: must end with ] or )", s)
	}
	low, high, found := strings.Cut(s[1:len(s)-1], ",")
	if !found {
		return interval{}, errs.Configurationf("malformed interval %q: missing comma", s)
	}
	var err error
	if in.low, err = parseBound(low); err != nil {
		return interval{}, errs.WrapConfiguration(err, "interval %q low bound", s)
	}
	if in.high, err = parseBound(high); err != nil {
		return interval{}, errs.WrapConfiguration(err, "interval %q high bound", s)
	}
	if in.low != nil && in.high != nil && compareNumber(*in.low, *in.high) > 0 {
		return interval{}, errs.Configurationf("interval %q: low bound exceeds high bound", s)
	}
	return in, nil
}

func parseBound(s string) (*number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &number{i: i, isInt: true}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &number{f: f}, nil
}

func (in interval) contains(value Data) (bool, error) {
	n, ok := numberOf(value)
	if !ok {
		return false, errs.Configurationf("INTERVAL validator applied to %s value", TypeOf(value))
	}
	if in.low != nil {
		c := compareNumber(n, *in.low)
		if c < 0 || (c == 0 && !in.lowInclusive) {
			return false, nil
		}
	}
	if in.high != nil {
		c := compareNumber(n, *in.high)
		if c > 0 || (c == 0 && !in.highInclusive) {
			return false, nil
		}
	}
	return true, nil
}
