package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeStorage      ErrorType = "STORAGE_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidPeriod    ErrorCode = "INVALID_PERIOD"
	ErrCodeInvalidUsage     ErrorCode = "INVALID_USAGE"
	ErrCodeInvalidRate      ErrorCode = "INVALID_RATE"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidFile      ErrorCode = "INVALID_FILE"
	ErrCodeFileTooLarge     ErrorCode = "FILE_TOO_LARGE"
	ErrCodeProofRequired    ErrorCode = "PROOF_REQUIRED"
	ErrCodeRejectionNote    ErrorCode = "REJECTION_NOTE_REQUIRED"

	ErrCodeTariffNotFound        ErrorCode = "TARIFF_NOT_FOUND"
	ErrCodeCustomerNotFound      ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeBillNotFound          ErrorCode = "BILL_NOT_FOUND"
	ErrCodePaymentNotFound       ErrorCode = "PAYMENT_NOT_FOUND"
	ErrCodePaymentMethodNotFound ErrorCode = "PAYMENT_METHOD_NOT_FOUND"
	ErrCodeStaffNotFound         ErrorCode = "STAFF_NOT_FOUND"

	ErrCodeDuplicatePeriod       ErrorCode = "DUPLICATE_PERIOD"
	ErrCodeDuplicateTariff       ErrorCode = "DUPLICATE_TARIFF"
	ErrCodeDuplicateCustomer     ErrorCode = "DUPLICATE_CUSTOMER"
	ErrCodeDuplicateStaff        ErrorCode = "DUPLICATE_STAFF"
	ErrCodeDuplicateMethod       ErrorCode = "DUPLICATE_PAYMENT_METHOD"
	ErrCodeTariffInUse           ErrorCode = "TARIFF_IN_USE"
	ErrCodeCustomerInUse         ErrorCode = "CUSTOMER_IN_USE"
	ErrCodePaymentMethodInUse    ErrorCode = "PAYMENT_METHOD_IN_USE"
	ErrCodePaymentMethodInactive ErrorCode = "PAYMENT_METHOD_INACTIVE"
	ErrCodeBillNotPayable        ErrorCode = "BILL_NOT_PAYABLE"
	ErrCodeBillNotDeletable      ErrorCode = "BILL_NOT_DELETABLE"
	ErrCodeActivePaymentExists   ErrorCode = "ACTIVE_PAYMENT_EXISTS"
	ErrCodeInvalidPaymentStatus  ErrorCode = "INVALID_PAYMENT_STATUS"
	ErrCodeStaffProtected        ErrorCode = "STAFF_PROTECTED"

	ErrCodeUnauthorizedAccess ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeStorageFailed ErrorCode = "STORAGE_FAILED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so package-level sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy so shared sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewStorageError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorage,
		Code:       ErrCodeStorageFailed,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewConflictError is used for business-rule rejections: well-formed input that
// conflicts with existing state.
func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewUnprocessableError marks requests that are well-formed but refused by a
// domain rule that does not depend on conflicting state.
func NewUnprocessableError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

var (
	ErrTariffNotFound        = NewNotFoundError("Tariff not found", ErrCodeTariffNotFound)
	ErrCustomerNotFound      = NewNotFoundError("Customer not found", ErrCodeCustomerNotFound)
	ErrBillNotFound          = NewNotFoundError("Bill not found", ErrCodeBillNotFound)
	ErrPaymentNotFound       = NewNotFoundError("Payment not found", ErrCodePaymentNotFound)
	ErrPaymentMethodNotFound = NewNotFoundError("Payment method not found", ErrCodePaymentMethodNotFound)
	ErrStaffNotFound         = NewNotFoundError("Staff account not found", ErrCodeStaffNotFound)

	ErrDuplicatePeriod       = NewConflictError("A bill already exists for this customer and period", ErrCodeDuplicatePeriod)
	ErrDuplicateTariff       = NewConflictError("A tariff with this power class already exists", ErrCodeDuplicateTariff)
	ErrDuplicateCustomer     = NewConflictError("Email or meter number is already registered", ErrCodeDuplicateCustomer)
	ErrDuplicateStaff        = NewConflictError("Email is already used by another staff account", ErrCodeDuplicateStaff)
	ErrDuplicateMethod       = NewConflictError("A payment method with this name already exists", ErrCodeDuplicateMethod)
	ErrTariffInUse           = NewConflictError("Tariff is still assigned to customers", ErrCodeTariffInUse)
	ErrCustomerInUse         = NewConflictError("Customer still has usage or bill records", ErrCodeCustomerInUse)
	ErrPaymentMethodInUse    = NewConflictError("Payment method is referenced by payments", ErrCodePaymentMethodInUse)
	ErrPaymentMethodInactive = NewConflictError("Payment method is not active", ErrCodePaymentMethodInactive)
	ErrBillNotPayable        = NewConflictError("Bill is not awaiting payment", ErrCodeBillNotPayable)
	ErrBillNotDeletable      = NewConflictError("Only unpaid bills without payments can be deleted", ErrCodeBillNotDeletable)
	ErrActivePaymentExists   = NewConflictError("Bill already has a payment that is not rejected", ErrCodeActivePaymentExists)
	ErrInvalidPaymentStatus  = NewConflictError("Payment is not awaiting verification", ErrCodeInvalidPaymentStatus)
	ErrStaffProtected        = NewUnprocessableError("Administrator accounts cannot be modified here", ErrCodeStaffProtected)
	ErrRejectionNoteRequired = NewUnprocessableError("A note is required when rejecting a payment", ErrCodeRejectionNote)
	ErrProofRequired         = NewUnprocessableError("Proof of transfer is required for this payment method", ErrCodeProofRequired)

	ErrUnauthorizedAccess = NewForbiddenError("unauthorized access", ErrCodeUnauthorizedAccess)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
