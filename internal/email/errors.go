package email

// EmailError represents an email-specific error with a code and message.
type EmailError struct {
	Code    string
	Message string
}

func (e *EmailError) Error() string {
	return e.Message
}

const (
	codeInternal = "internal"
	codeInvalid  = "invalid"
)

var (
	// ErrInvalidFromAddress is returned when the from address is invalid.
	ErrInvalidFromAddress = &EmailError{Code: codeInvalid, Message: "Invalid from email address"}

	// ErrInvalidToAddress is returned when the to address is invalid.
	ErrInvalidToAddress = &EmailError{Code: codeInvalid, Message: "Invalid to email address"}
)
