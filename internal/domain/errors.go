package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors. Every expected condition maps to one of
// these; only infrastructure failures go through ErrInternal.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrGameClosed(msg string) *AppError {
	return &AppError{Code: "GAME_CLOSED", Message: msg, Status: 409}
}

func ErrInvalidPrediction(msg string) *AppError {
	return &AppError{Code: "INVALID_PREDICTION", Message: msg, Status: 400}
}

func ErrInsufficientBalance() *AppError {
	return &AppError{Code: "INSUFFICIENT_BALANCE", Message: "insufficient coin balance", Status: 400}
}

func ErrIncompleteResults(msg string) *AppError {
	return &AppError{Code: "INCOMPLETE_RESULTS", Message: msg, Status: 400}
}

func ErrOutOfStock(itemName string) *AppError {
	return &AppError{Code: "OUT_OF_STOCK", Message: fmt.Sprintf("%s is out of stock", itemName), Status: 409}
}

func ErrItemInactive(itemName string) *AppError {
	return &AppError{Code: "ITEM_INACTIVE", Message: fmt.Sprintf("%s is not available", itemName), Status: 409}
}

func ErrInvalidTransition(from, to RedemptionStatus) *AppError {
	return &AppError{Code: "INVALID_TRANSITION", Message: fmt.Sprintf("cannot transition redemption from %s to %s", from, to), Status: 409}
}

func ErrAlreadyAttempted(msg string) *AppError {
	return &AppError{Code: "ALREADY_ATTEMPTED", Message: msg, Status: 409}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
