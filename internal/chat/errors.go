package chat

import "fmt"

// ErrorKind classifies what went wrong during a turn. Every kind except
// StoreFailure is recoverable: it renders as a specific clarifying message
// instead of aborting the turn.
type ErrorKind int

const (
	// ParseFailure: a date or task reference could not be resolved.
	ParseFailure ErrorKind = iota + 1
	// ValidationFailure: a field is outside its allowed range or enum.
	ValidationFailure
	// NotFound: the referenced task does not exist for this owner.
	NotFound
	// StaleConfirmation: the staged target vanished before confirmation.
	StaleConfirmation
	// StoreFailure: the underlying store failed; the turn is aborted.
	StoreFailure
)

type TurnError struct {
	Kind    ErrorKind
	Field   string // offending field for ValidationFailure/ParseFailure
	Message string // user-facing clarification
	Err     error
}

func (e *TurnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TurnError) Unwrap() error { return e.Err }

// Recoverable reports whether the error renders as a reply rather than
// aborting the turn.
func (e *TurnError) Recoverable() bool { return e.Kind != StoreFailure }

func parseFailure(field, format string, args ...any) *TurnError {
	return &TurnError{Kind: ParseFailure, Field: field, Message: fmt.Sprintf(format, args...)}
}

func validationFailure(field, format string, args ...any) *TurnError {
	return &TurnError{Kind: ValidationFailure, Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *TurnError {
	return &TurnError{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

func storeFailure(err error) *TurnError {
	return &TurnError{Kind: StoreFailure, Message: "store operation failed", Err: err}
}
