package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"modcase-bot/model"
)

var (
	validate      *validator.Validate
	snowflakeExpr = regexp.MustCompile(`^[0-9]{15,21}$`)
)

func init() {
	validate = validator.New()
	registerCustomValidations()
}

func registerCustomValidations() {
	// Discord ids are 15-21 digit integers.
	validate.RegisterValidation("snowflake", func(fl validator.FieldLevel) bool {
		return IsSnowflake(fl.Field().String())
	})

	validate.RegisterValidation("case_kind", func(fl validator.FieldLevel) bool {
		kind := model.CaseKind(fl.Field().String())
		for _, k := range model.CaseKinds {
			if kind == k {
				return true
			}
		}
		return false
	})
}

// IsSnowflake reports whether s looks like a Discord id.
func IsSnowflake(s string) bool {
	return snowflakeExpr.MatchString(s)
}

// Struct validates s and flattens field errors into one error.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "snowflake":
		return field + " must be a valid Discord id"
	case "case_kind":
		return field + " is not a known punishment kind"
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "dive", "unique":
		return field + " contains duplicates"
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
