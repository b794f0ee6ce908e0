package stencil

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// result is the Validator returned by Check.
type result struct {
	ok    bool
	value any
}

func (r result) Valid() bool { return r.ok }
func (r result) Value() any  { return r.value }

// Check returns a Validator with a fixed verdict and output value.
func Check(valid bool, value any) Validator {
	return result{ok: valid, value: value}
}

// ValidatorFunc builds a factory from a predicate. Accepted values are
// committed unchanged.
func ValidatorFunc(pred func(raw any) bool) ValidatorFactory {
	return func(raw any) Validator {
		return Check(pred(raw), raw)
	}
}

// Normalizer builds a factory from a function that both checks and rewrites
// the value. The returned value is committed when ok is true.
func Normalizer(fn func(raw any) (value any, ok bool)) ValidatorFactory {
	return func(raw any) Validator {
		value, ok := fn(raw)
		return Check(ok, value)
	}
}

// singleton go-playground validator instance
var (
	rules     *validator.Validate
	rulesOnce sync.Once
)

func ruleValidator() *validator.Validate {
	rulesOnce.Do(func() {
		rules = validator.New(validator.WithRequiredStructEnabled())
	})
	return rules
}

// Rule builds a factory that checks values against a go-playground validator
// tag such as "required,len=3,uppercase" or "min=-90,max=90".
// Accepted values are committed unchanged.
//
// A nil value is accepted unless the tag holds a plain "required" rule. A
// value whose kind the tag cannot check, such as a bool under "min=1", is
// rejected. An undefined tag panics here, when the rule is declared.
func Rule(tag string) ValidatorFactory {
	v := ruleValidator()
	mustDefine(v, tag)
	req := hasRequired(tag)
	return func(raw any) Validator {
		if raw == nil {
			return Check(!req, raw)
		}
		return Check(checkVar(v, raw, tag), raw)
	}
}

// checkVar runs one go-playground check. Var panics on kinds a tag does not
// support, which counts as a rejection here.
func checkVar(v *validator.Validate, raw any, tag string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return v.Var(raw, tag) == nil
}

// mustDefine re-raises the panic go-playground reports for an unknown tag and
// ignores kind mismatches of the empty sample value.
func mustDefine(v *validator.Validate, tag string) {
	defer func() {
		if r := recover(); r != nil && strings.Contains(fmt.Sprint(r), "Undefined validation function") {
			panic(r)
		}
	}()
	_ = v.Var("", tag)
}

func hasRequired(tag string) bool {
	for _, rule := range strings.Split(tag, ",") {
		if strings.TrimSpace(rule) == "required" {
			return true
		}
	}
	return false
}

func required(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case *Bag:
		return v.Len() > 0
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func trim(raw any) (any, bool) {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s), true
	}
	return raw, true
}

// builtinValidators is available to every Engine; engine-level
// registrations with the same identifier take precedence.
var builtinValidators = map[string]ValidatorFactory{
	ValidatorRequired: ValidatorFunc(required),
	ValidatorTrim:     Normalizer(trim),
	ValidatorSHA256:   Normalizer(sha256Digest),
	ValidatorBcrypt:   Bcrypt(0),
}

// BuiltinValidators returns a copy of the built-in validator registry.
func BuiltinValidators() map[string]ValidatorFactory {
	out := make(map[string]ValidatorFactory, len(builtinValidators))
	for k, v := range builtinValidators {
		out[k] = v
	}
	return out
}
