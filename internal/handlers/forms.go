package handlers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s-]+$`)

	registerOnce sync.Once
	registerErr  error
)

// RegistrationForm is what the registration page posts.
type RegistrationForm struct {
	Name     string `form:"name" json:"name" binding:"notblank"`
	Email    string `form:"email" json:"email" binding:"campaignemail"`
	Phone    string `form:"phone" json:"phone" binding:"campaignphone"`
	Location string `form:"location" json:"location"`
}

var fieldMessages = map[string]string{
	"Name":  "Name is required",
	"Email": "Valid email is required",
	"Phone": "Valid phone number is required",
}

// RegisterValidators installs the form rules on gin's validator.
// The first outcome is kept; later calls return it again.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		rules := map[string]validator.Func{
			"notblank": func(fl validator.FieldLevel) bool {
				return strings.TrimSpace(fl.Field().String()) != ""
			},
			"campaignemail": func(fl validator.FieldLevel) bool {
				return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
			},
			"campaignphone": func(fl validator.FieldLevel) bool {
				phone := strings.TrimSpace(fl.Field().String())
				return len(phone) >= 8 && phonePattern.MatchString(phone)
			},
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("register %s validation: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

// fieldErrors turns a binding error into one message per offending field.
// ok is false when err is not a validation failure.
func fieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out[strings.ToLower(fe.Field())] = msg
	}
	return out, true
}
