package service

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"newsroom/internal/apperr"
	"newsroom/internal/entity"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	minNameLength     = 2
	maxNameLength     = 100
	maxEmailLength    = 255
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
	maxBioLength      = 500
	passwordSpecials  = "@$!%*?&"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

var nameRules = []validation.Rule{
	validation.Length(minNameLength, maxNameLength).Error("Name must be between 2 and 100 characters"),
	validation.Match(namePattern).Error("Name can only contain letters and spaces"),
}

var emailRules = []validation.Rule{
	is.EmailFormat.Error("Please provide a valid email address"),
	validation.Length(0, maxEmailLength).Error("Email must be at most 255 characters"),
}

var passwordRules = []validation.Rule{
	validation.By(passwordStrength),
}

func passwordStrength(value interface{}) error {
	s, _ := value.(string)
	if len(s) < minPasswordLength {
		return validation.NewError("password_too_short", "Password must be at least 8 characters long")
	}
	if len(s) > maxPasswordLength {
		return validation.NewError("password_too_long", "Password must be at most 72 bytes long")
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return validation.NewError("password_too_weak",
			"Password must contain at least one uppercase letter, one lowercase letter, one number and one special character")
	}
	return nil
}

func validateRegistration(req *entity.RegisterRequest) error {
	return fieldErrors(validation.ValidateStruct(req,
		validation.Field(&req.Name, nameRules...),
		validation.Field(&req.Email, emailRules...),
		validation.Field(&req.Password, passwordRules...),
	))
}

func validateProfile(req *entity.UpdateProfileRequest) error {
	return fieldErrors(validation.ValidateStruct(req,
		validation.Field(&req.Name, append([]validation.Rule{validation.NilOrNotEmpty.Error("Name must not be empty")}, nameRules...)...),
		validation.Field(&req.Email, append([]validation.Rule{validation.NilOrNotEmpty.Error("Email must not be empty")}, emailRules...)...),
		validation.Field(&req.Bio, validation.Length(0, maxBioLength).Error("Bio must be at most 500 characters")),
	))
}

type newPasswordInput struct {
	NewPassword string `json:"newPassword"`
}

func validateNewPassword(password string) error {
	in := &newPasswordInput{NewPassword: password}
	return fieldErrors(validation.ValidateStruct(in, validation.Field(&in.NewPassword, passwordRules...)))
}

// fieldErrors converts ozzo errors into a VALIDATION_ERROR carrying one
// entry per field, sorted by field name.
func fieldErrors(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return apperr.Internal("validation failed", err)
	}
	details := make([]entity.FieldError, 0, len(errs))
	for field, fieldErr := range errs {
		details = append(details, entity.FieldError{Field: field, Message: fieldErr.Error()})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
	return apperr.Validation("Validation failed", apperr.CodeValidation).WithDetails(details)
}
