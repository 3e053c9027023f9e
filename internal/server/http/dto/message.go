package dto

// MessageResponse carries an informational or error message.
type MessageResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}
