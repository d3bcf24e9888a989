package users

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

// DefaultSignupDomain is the only mailbox domain allowed to self-register.
const DefaultSignupDomain = "@madec.co.ma"

// SignupInput is what the signup form collects before calling the identity provider.
type SignupInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"required,max=120"`
	City  string `json:"city" validate:"required,max=80"`
}

// SignupResult echoes the normalized input.
type SignupResult struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	City        string `json:"city"`
	KnownAgency bool   `json:"known_agency"`
}

var signupValidator = newSignupValidator()

func newSignupValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// ValidateSignup checks a signup locally. Cities outside the agency list are accepted.
func ValidateSignup(input SignupInput, allowedDomain string) (*SignupResult, error) {
	domain := strings.ToLower(strings.TrimSpace(allowedDomain))
	if domain == "" {
		domain = DefaultSignupDomain
	}
	if !strings.HasPrefix(domain, "@") {
		domain = "@" + domain
	}

	clean := SignupInput{
		Email: strings.ToLower(strings.TrimSpace(input.Email)),
		Name:  strings.TrimSpace(input.Name),
		City:  strings.ToUpper(strings.TrimSpace(input.City)),
	}

	details := map[string]string{}
	if err := signupValidator.Struct(clean); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				details[fe.Field()] = signupMessage(fe)
			}
		} else {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
		}
	}
	if _, bad := details["email"]; !bad && !strings.HasSuffix(clean.Email, domain) {
		details["email"] = "must end with " + domain
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	return &SignupResult{
		Email:       clean.Email,
		Name:        clean.Name,
		City:        clean.City,
		KnownAgency: enums.IsKnownAgency(clean.City),
	}, nil
}

func signupMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}
