package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxInstanceNameLength bounds instance names so the directory name stays portable
const MaxInstanceNameLength = 64

// reservedDeviceNames are names Windows refuses as file or directory names
var reservedDeviceNames = []string{
	"CON", "PRN", "AUX", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

// versionIDPattern accepts catalog identifiers such as "1.20.11" or "1.21.0-rc.2"
var versionIDPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z.+-]{0,63}$`)

// InputValidator validates user-supplied names and identifiers
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator creates a validator with the "instancename" tag registered
func NewInputValidator() *InputValidator {
	v := validator.New()
	_ = v.RegisterValidation("instancename", func(fl validator.FieldLevel) bool {
		return instanceNameProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("versionid", func(fl validator.FieldLevel) bool {
		return versionIDPattern.MatchString(fl.Field().String())
	})
	return &InputValidator{validate: v}
}

// Struct validates a struct using its validate tags
func (v *InputValidator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateInstanceName checks that name is safe to use as a directory name on every target OS
func (v *InputValidator) ValidateInstanceName(name string) error {
	if problem := instanceNameProblem(name); problem != "" {
		return NewAppError(ErrInvalidName, problem, 422, map[string]any{"field": "name", "value": name})
	}
	return nil
}

// ValidateVersionID checks that id looks like a catalog version identifier
func (v *InputValidator) ValidateVersionID(id string) error {
	if !versionIDPattern.MatchString(id) {
		return NewAppError(ErrInvalidInput, "Invalid version identifier", 400, map[string]any{"field": "version", "value": id})
	}
	return nil
}

// instanceNameProblem returns a description of why name is unsafe, or "" when it is fine
func instanceNameProblem(name string) string {
	if name == "" {
		return "Instance name is required"
	}
	if !utf8.ValidString(name) {
		return "Instance name must be valid UTF-8"
	}
	if utf8.RuneCountInString(name) > MaxInstanceNameLength {
		return fmt.Sprintf("Instance name too long (max %d characters)", MaxInstanceNameLength)
	}
	if name == "." || name == ".." {
		return "Instance name cannot be a relative path element"
	}
	if strings.HasPrefix(name, ".") {
		return "Instance name cannot start with a dot"
	}
	if strings.TrimSpace(name) != name {
		return "Instance name cannot start or end with whitespace"
	}
	if strings.HasSuffix(name, ".") {
		return "Instance name cannot end with a dot"
	}
	for _, r := range name {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return fmt.Sprintf("Instance name contains forbidden character %q", r)
		}
	}
	base := strings.ToUpper(name)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if slices.Contains(reservedDeviceNames, base) {
		return "Instance name is a reserved device name"
	}
	return ""
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string
	code := ErrInvalidInput
	status := 400
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "instancename":
			code, status = ErrInvalidName, 422
			messages = append(messages, fmt.Sprintf("%s: %s", e.Field(), instanceNameProblem(fmt.Sprint(e.Value()))))
		case "versionid":
			messages = append(messages, fmt.Sprintf("%s is not a valid version identifier", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
		}
	}
	return NewAppError(code, strings.Join(messages, "; "), status, nil)
}
