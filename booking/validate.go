package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"cinepay/entity"
)

type CheckoutRequest struct {
	MovieSessionID   int                  `validate:"required"`
	SeatIDs          []int                `validate:"required,min=1,unique"`
	ParticipantCount int                  `validate:"required,gt=0"`
	BuffetItems      []entity.BuffetItem  `validate:"dive"`
	PaymentMethod    entity.PaymentMethod `validate:"required,oneof=airtel_money moov_money"`
	PaymentPhone     string               `validate:"required"`
}

// CanProceed is the gate the payment screen uses to enable its confirm
// action: a method must be selected and the phone must match it.
func CanProceed(method entity.PaymentMethod, phone string) bool {
	return method.Valid() && entity.ValidPaymentPhone(method, phone)
}

type checkoutValidator struct {
	validate *validator.Validate
}

func newCheckoutValidator() *checkoutValidator {
	v := validator.New()

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		request := sl.Current().Interface().(CheckoutRequest)

		if len(request.SeatIDs) != request.ParticipantCount {
			sl.ReportError(request.SeatIDs, "SeatIDs", "seat_ids", "eq_participant_count", "")
		}
		if request.PaymentMethod.Valid() && !entity.ValidPaymentPhone(request.PaymentMethod, request.PaymentPhone) {
			sl.ReportError(request.PaymentPhone, "PaymentPhone", "payment_phone", "payment_phone", "")
		}
	}, CheckoutRequest{})

	return &checkoutValidator{validate: v}
}

// Validate translates validator failures into a single user-facing message,
// mirroring how backend 422 responses are flattened.
func (v *checkoutValidator) Validate(request CheckoutRequest) error {
	err := v.validate.Struct(request)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("could not validate checkout request: %w", err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, describeFieldError(fieldErr))
	}

	return ValidationError{Message: strings.Join(messages, ", ")}
}

type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func describeFieldError(err validator.FieldError) string {
	switch err.Tag() {
	case "eq_participant_count":
		return "the number of seats must match the participant count"
	case "payment_phone":
		return "the phone number does not match the selected payment method"
	case "oneof":
		return "the payment method must be airtel_money or moov_money"
	case "required", "min", "gt":
		return fmt.Sprintf("%s is required", strings.ToLower(err.Field()))
	case "unique":
		return "seats cannot be selected twice"
	default:
		return fmt.Sprintf("%s is invalid", strings.ToLower(err.Field()))
	}
}
