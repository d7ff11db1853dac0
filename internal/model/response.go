package model

// ErrorResponse carries either a field->message map or, for request
// validation failures, a list of such maps.
type ErrorResponse struct {
	Error any `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message string               `json:"message"`
	Data    AuthenticatedAccount `json:"data"`
}

type PingResponse struct {
	Message string `json:"message"`
}
