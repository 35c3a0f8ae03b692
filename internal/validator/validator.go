// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("reference_type", validateReferenceType)
		_ = v.RegisterValidation("appointment_status", validateAppointmentStatus)
		_ = v.RegisterValidation("priority", validatePriority)
		_ = v.RegisterValidation("subscription_type", validateSubscriptionType)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "cash", "card", "bank_transfer", "check":
		return true
	}
	return false
}

func validateReferenceType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "visit", "patient", "appointment", "manual":
		return true
	}
	return false
}

func validateAppointmentStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "scheduled", "completed", "cancelled", "incomplete":
		return true
	}
	return false
}

func validatePriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "low", "normal", "high", "urgent":
		return true
	}
	return false
}

func validateSubscriptionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "basic", "premium", "enterprise":
		return true
	}
	return false
}
