package core

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return "invalid data"
}

// FieldMap returns the field errors keyed by field name.
func (err ValidationError) FieldMap() map[string]string {
	flds := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

// ValidationFromValidator converts validator.ValidationErrors into a *ValidationError
// carrying translated, field-scoped messages. Other errors are returned as is.
func ValidationFromValidator(err error, translator ut.Translator) error {
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(translator)})
	}
	return NewValidationError(nil, flds...)
}

// IsValidationError reports whether err (or its cause) is a *ValidationError.
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// messenger is implemented by errors that carry a message meant for end users,
// e.g. the school API error.
type messenger interface {
	UserMessage() string
}

// ErrorMessage returns the user-facing message of err, or fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	switch origErr := errors.Cause(err).(type) {
	case messenger:
		if msg := origErr.UserMessage(); msg != "" {
			return msg
		}
	case *ValidationError:
		return origErr.Error()
	}
	return fallback
}
