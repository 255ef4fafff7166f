package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/godi-api/internal/domain/enum"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the inventory rules registered
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		mustRegister(v, map[string]validator.Func{
			"notblank": notBlank,
			"wholenum": wholeNumber,
			"category": validCategory,
		})
		instance = v
	})
	return instance
}

// Messages validates s and returns one message per offending field, in field order.
// suffix is appended to every message (e.g. " in sale item").
func Messages(s interface{}, suffix string) []string {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, Message(fe.Field(), fe.Tag() == "required")+suffix)
	}
	return msgs
}

// Failures validates s and reports each offending field by its JSON name. The value is true
// when the field was missing rather than invalid.
func Failures(s interface{}) map[string]bool {
	var verrs validator.ValidationErrors
	if !errors.As(Validator().Struct(s), &verrs) {
		return nil
	}
	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = fe.Tag() == "required"
	}
	return failed
}

// Message renders a single field failure
func Message(field string, missing bool) string {
	if missing {
		return fmt.Sprintf("Field '%s' is required", field)
	}
	return fmt.Sprintf("Invalid value for field '%s'", field)
}

// mustRegister panics on a rule that cannot be registered; a broken tag is a programming error.
func mustRegister(v *validator.Validate, rules map[string]validator.Func) {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validation: register %q: %v", tag, err))
		}
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func wholeNumber(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		v := f.Float()
		return !math.IsInf(v, 0) && v == math.Trunc(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func validCategory(fl validator.FieldLevel) bool {
	return enum.ProductCategory(fl.Field().String()).IsValid()
}
