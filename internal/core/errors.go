package core

// Kind classifies a domain error for boundary translation.
type Kind int

const (
	// KindValidation marks missing or malformed input.
	KindValidation Kind = iota
	// KindConflict marks a uniqueness violation (duplicate email).
	KindConflict
	// KindAuth marks unknown-user or bad-credential failures.
	KindAuth
	// KindInternal marks unexpected failures.
	KindInternal
	// KindDelivery marks a failed realtime push. Logged, never surfaced
	// over HTTP: persistence has already succeeded by then.
	KindDelivery
)

// Error codes for domain errors.
const (
	ErrCodeMissingFields = "missing_fields"
	ErrCodeShortPassword = "short_password"
	ErrCodeEmailTaken    = "email_taken"
	ErrCodeBadCreds      = "bad_credentials"
	ErrCodeUserNotFound  = "user_not_found"
	ErrCodeEmptyMessage  = "empty_message"
	ErrCodeBadImage      = "bad_image"
	ErrCodeInternal      = "internal"
	ErrCodeDelivery      = "delivery_failed"
)

// Error wraps a kind, a stable code and a human-readable message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ValidationError builds a KindValidation error.
func ValidationError(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

// ConflictError builds a KindConflict error.
func ConflictError(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

// AuthError builds a KindAuth error.
func AuthError(code, msg string) *Error {
	return &Error{Kind: KindAuth, Code: code, Message: msg}
}

// InternalError builds a KindInternal error.
func InternalError(msg string) *Error {
	return &Error{Kind: KindInternal, Code: ErrCodeInternal, Message: msg}
}
