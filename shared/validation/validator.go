package validation

import (
	"errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError is a single failed rule on a request field.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Validator wraps go-playground/validator with English messages.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with the English translations registered.
func New() (*Validator, error) {
	locale := en.New()
	uni := ut.New(locale, locale)

	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	return &Validator{validate: validate, translator: translator}, nil
}

// Struct validates s and returns the failed fields in declaration order.
// A nil slice means s is valid. The error is only set for invalid input
// to the validator itself (e.g. a non-struct).
func (v *Validator) Struct(s any) ([]FieldError, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fe.Translate(v.translator),
		})
	}

	return fields, nil
}
