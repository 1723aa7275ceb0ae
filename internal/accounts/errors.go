package accounts

// Error はフォームにそのまま表示できる検証エラーです。
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrDuplicateUsername = &Error{
		Code:    "DUPLICATE_USERNAME",
		Message: "That username is taken. Please choose a different one.",
	}
	ErrUnknownUser = &Error{
		Code:    "UNKNOWN_USER",
		Message: "No user with that username. Please try again.",
	}
	ErrCredentialMismatch = &Error{
		Code:    "CREDENTIAL_MISMATCH",
		Message: "Password doesn't match. Please try again.",
	}
)
