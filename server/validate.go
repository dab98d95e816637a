package server

import (
	"errors"
	"regexp"

	"Bt1Arena/core/apperr"
	"Bt1Arena/core/theme"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Each action declares a typed
// request struct with validation tags, so no service logic runs on
// unvalidated input.
var validate = newValidator()

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func newValidator() *validator.Validate {
	v := validator.New()

	// 用户名只允许字母、数字和下划线
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})

	// 颜色必须是六位十六进制，例如 #ff6b9d
	v.RegisterValidation("hex6", func(fl validator.FieldLevel) bool {
		return theme.ValidHexColor(fl.Field().String())
	})

	return v
}

// checkRequest validates a request struct and maps the first violation to
// its user-facing message. messages is keyed by "Field.tag" with a
// "Field" fallback.
func checkRequest(req interface{}, messages map[string]string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
			return apperr.Validation(msg)
		}
		if msg, ok := messages[fe.Field()]; ok {
			return apperr.Validation(msg)
		}
		return apperr.Validation("Invalid value for " + fe.Field())
	}
	return apperr.Internal("request validation failed", err)
}
