package validators

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
)

var (
	validate *validator.Validate

	phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names so error codes match request keys.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}

// Struct validates v and converts the first failure into a business error
// with code "invalid_<field>".
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return httperr.ErrValidation("invalid_"+field, field+" is required")
	case "datetime":
		return httperr.ErrValidation("invalid_"+field, field+" must match "+fe.Param())
	case "email":
		return httperr.ErrValidation("invalid_"+field, field+" must be a valid email")
	case "phone":
		return httperr.ErrValidation("invalid_"+field, field+" must be a phone number")
	default:
		return httperr.ErrValidation("invalid_"+field, field+" failed "+fe.Tag())
	}
}

// NormalizePhone drops spaces and dashes.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
}

// NormalizeVehicleReg upper-cases and drops spaces.
func NormalizeVehicleReg(reg string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(reg), " ", ""))
}

// Blank reports a value that counts as absent.
func Blank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}

// NilIfBlank turns blank optional strings into nil.
func NilIfBlank(p *string) *string {
	if Blank(p) {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
