package serrors

import "fmt"

// Base is a coded error shared across modules. Code is a stable,
// machine-readable identifier; Message is the developer-facing text.
type Base struct {
	Code    string
	Message string
	Details string
}

func NewError(code, message, details string) *Base {
	return &Base{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func (e *Base) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Base) Is(target error) bool {
	other, ok := target.(*Base)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// WithDetails returns a copy carrying extra context while remaining
// errors.Is-comparable to the original by code.
func (e *Base) WithDetails(details string) *Base {
	return &Base{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}
