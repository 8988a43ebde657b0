package users

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

const MinPasswordLength = 8

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// RegistrationForm is the submitted registration input.
type RegistrationForm struct {
	FullName        string `label:"Full name"`
	Email           string `label:"Email" validate:"required,max=254"`
	Password        string `label:"Password" validate:"required,min=8,max=72,maxbytes=72"`
	ConfirmPassword string `label:"Password confirmation" validate:"eqfield=Password"`
}

// ValidationErrors is a list of user-facing validation messages.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

var (
	validatorOnce sync.Once
	validate      *validator.Validate
	translator    ut.Translator
)

func formValidator() (*validator.Validate, ut.Translator) {
	validatorOnce.Do(func() {
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		translator, _ = uni.GetTranslator("en")

		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			if label := field.Tag.Get("label"); label != "" {
				return label
			}
			return field.Name
		})
		if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
			panic("failed to register maxbytes validation: " + err.Error())
		}
		if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
			panic("failed to register validator translations: " + err.Error())
		}
		registerTranslation("eqfield", "Passwords do not match")
		registerTranslation("min", "{0} must be at least {1} characters long")
		registerTranslation("max", "{0} must be at most {1} characters long")
		registerTranslation("maxbytes", "{0} must be at most {1} bytes long")
	})
	return validate, translator
}

// maxBytes limits the encoded length of a string field. max counts runes, so a short
// password of multibyte characters can still exceed what the hasher accepts.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(tag, translator,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, err := ut.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// Normalize trims the text fields and lowercases the email. Passwords are left untouched.
func (f *RegistrationForm) Normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = NormalizeEmail(f.Email)
}

// Validate checks every rule and returns all violations at once, or nil.
func (f RegistrationForm) Validate() ValidationErrors {
	v, trans := formValidator()
	err := v.Struct(f)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{err.Error()}
	}
	msgs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(trans))
	}
	return msgs
}
