// Package validation registers the request binding rules shared by all handlers
// and turns binding failures into application errors.
package validation

import (
	stdErrors "errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"taskflow/pkg/errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	once        sync.Once
	registerErr error
)

// Register installs the custom tags on gin's validator. Safe to call repeatedly.
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs notblank, trimmax and JSON field naming on v.
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return err
	}
	return v.RegisterValidation("trimmax", trimMax)
}

// trimMax checks the rune count of a string after surrounding whitespace is removed.
func trimMax(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(field.String())) <= limit
}

// Translate converts a ShouldBind error into a VALIDATION_ERROR carrying one
// message per failed field, or a BAD_REQUEST for unreadable bodies.
func Translate(err error) *errors.AppError {
	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) {
		return errors.Wrap(err, errors.CodeBadRequest, "malformed request body")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return errors.Validation("request validation failed", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "max", "trimmax":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
