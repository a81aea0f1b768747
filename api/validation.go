package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelstore/internal/payment"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the card tags to gin's validator: luhn, expiry
// (MM/YY, not in the past) and cvc.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	rules := map[string]validator.Func{
		"luhn": func(fl validator.FieldLevel) bool {
			return payment.IsValidCardNumber(fl.Field().String())
		},
		"expiry": func(fl validator.FieldLevel) bool {
			return payment.IsValidExpiry(fl.Field().String(), time.Now())
		},
		"cvc": func(fl validator.FieldLevel) bool {
			return payment.IsValidCVC(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}

// cardMessage picks the message the checkout workflow would give for the
// same input, so binding and workflow checks agree.
func cardMessage(errs validator.ValidationErrors) string {
	failed := make(map[string]string, len(errs))
	for _, fe := range errs {
		failed[fe.Field()] = fe.Tag()
	}
	switch {
	case failed["CardNumber"] != "":
		return "invalid card number"
	case failed["Expiry"] == "required" || failed["CVC"] == "required":
		return "complete all card fields"
	case failed["Expiry"] != "":
		return "invalid expiry date"
	default:
		return "cvc must be a 3-digit number"
	}
}
