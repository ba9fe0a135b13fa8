package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Status int         `json:"status"`
	Error  string      `json:"error,omitempty"`
	Errors []string    `json:"errors,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// OK wraps data in a 200 envelope.
func OK(data interface{}) Response {
	return Response{
		Status: http.StatusOK,
		Data:   data,
	}
}

// Error builds an error envelope. A zero status means 500.
func Error(msg string, status int) Response {
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return Response{
		Status: status,
		Error:  msg,
	}
}

// ValidationError lists one message per invalid field.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", err.Field()))
		case "sui_address":
			msgs = append(msgs, fmt.Sprintf("field %s must be a sui address", err.Field()))
		case "sui_digest":
			msgs = append(msgs, fmt.Sprintf("field %s must be a transaction digest", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", err.Field()))
		}
	}

	return Response{
		Status: http.StatusBadRequest,
		Error:  strings.Join(msgs, ", "),
		Errors: msgs,
	}
}
