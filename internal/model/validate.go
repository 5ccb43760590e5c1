package model

import "fmt"

// ValidationError reports a malformed input field. The web layer maps it to
// a 400 response carrying the field name.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
