package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
