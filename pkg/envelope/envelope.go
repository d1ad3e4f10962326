// Package envelope defines the JSON body shared by every API response:
//
//	{"success": bool, "data": ..., "message": "...", "errors": {"field": ["..."]}}
package envelope

// Response is the uniform API envelope. Errors is only set for validation
// failures.
type Response struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// ValidationMessage is the message carried by every 422 response.
const ValidationMessage = "Validation failed"

func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// WithMessage is a successful response that carries both data and a message,
// as returned by create and update.
func WithMessage(data interface{}, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// Message is a successful response without data, as returned by delete.
func Message(message string) Response {
	return Response{Success: true, Message: message}
}

func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

func ValidationFailed(errs map[string][]string) Response {
	return Response{Success: false, Message: ValidationMessage, Errors: errs}
}
