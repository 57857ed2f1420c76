package utils

// UserError carries a message meant for the person who ran the command.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func NewUserError(message string) *UserError {
	return &UserError{Message: message}
}
