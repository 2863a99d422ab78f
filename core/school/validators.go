package school

import (
	"regexp"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/SaurabhAlex/school-management-web/core"
)

// DateLayout is the attendance date format.
const DateLayout = "2006-01-02"

var (
	mobileTag    = "mobile"
	mobileText   = "please enter a valid 10-digit mobile number starting with 6-9"
	mobileRegex  = regexp.MustCompile(`^[6-9]\d{9}$`)
	letterRegex  = regexp.MustCompile(`^[A-Z]$`)
	digitRegex   = regexp.MustCompile(`^[1-9]$`)
	numberRegex  = regexp.MustCompile(`^\d{1,2}$`)
	classNameTag = "classname"

	classNameText = "name should be a number (1-12) or a single uppercase letter"
	sectionTag    = "section"
	sectionText   = "section should be a single uppercase letter (A-Z)"

	departmentTag  = "department"
	departmentText = "{0} must be one of " + strings.Join(Departments, ", ")
)

// InitValidators registers the school validation tags and their messages.
// core.InitValidators must have been called on validate first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(mobileTag, mobileValidation)
	core.RegisterCustomTranslation(validate, translator, mobileTag, mobileText)

	_ = validate.RegisterValidation(classNameTag, classNameValidation)
	core.RegisterCustomTranslation(validate, translator, classNameTag, classNameText)

	_ = validate.RegisterValidation(sectionTag, sectionValidation)
	core.RegisterCustomTranslation(validate, translator, sectionTag, sectionText)

	_ = validate.RegisterValidation(departmentTag, departmentValidation)
	core.RegisterCustomTranslation(validate, translator, departmentTag, departmentText)
}

// NewValidator returns a validator with every tag used by the forms of this package.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

// ValidMobile reports whether s is a 10-digit mobile number starting with 6-9.
func ValidMobile(s string) bool {
	return mobileRegex.MatchString(s)
}

// ValidClassName accepts a number between 1 and 12 or a single uppercase letter.
func ValidClassName(s string) bool {
	if letterRegex.MatchString(s) {
		return true
	}
	if !numberRegex.MatchString(s) {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1 && n <= 12
}

// PadClassName zero-pads single digit class names: "5" -> "05". The backend stores names that way.
func PadClassName(name string) string {
	if digitRegex.MatchString(name) {
		return "0" + name
	}
	return name
}

// DisplayClassName strips one leading zero from a stored class name: "05" -> "5".
func DisplayClassName(name string) string {
	return strings.TrimPrefix(name, "0")
}

func mobileValidation(fl validator.FieldLevel) bool {
	return ValidMobile(fl.Field().String())
}

func classNameValidation(fl validator.FieldLevel) bool {
	return ValidClassName(fl.Field().String())
}

func sectionValidation(fl validator.FieldLevel) bool {
	return letterRegex.MatchString(fl.Field().String())
}

func departmentValidation(fl validator.FieldLevel) bool {
	dept := fl.Field().String()
	for _, d := range Departments {
		if d == dept {
			return true
		}
	}
	return false
}
