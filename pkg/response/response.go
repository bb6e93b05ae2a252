package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform JSON body every endpoint returns.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  *ErrorInfo  `json:"errors"`
}

// ErrorInfo carries the failure detail shown to the client.
type ErrorInfo struct {
	Detail string `json:"detail"`
}

// JSON sends an envelope with the given status code
func JSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(Envelope{
		Success: status >= 200 && status < 300,
		Message: message,
		Data:    data,
	})
}

// Error sends a failure envelope
func Error(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(Envelope{
		Success: false,
		Message: message,
		Errors:  &ErrorInfo{Detail: detail},
	})
}

// OK sends a 200 response with data
func OK(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusOK, message, data)
}

// Created sends a 201 response with data
func Created(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusCreated, message, data)
}

// BadRequest sends a 400 response
func BadRequest(w http.ResponseWriter, detail string) {
	Error(w, http.StatusBadRequest, "bad request", detail)
}

// Unauthorized sends a 401 response
func Unauthorized(w http.ResponseWriter, detail string) {
	Error(w, http.StatusUnauthorized, "unauthorized", detail)
}

// Forbidden sends a 403 response
func Forbidden(w http.ResponseWriter, detail string) {
	Error(w, http.StatusForbidden, "forbidden", detail)
}

// NotFound sends a 404 response
func NotFound(w http.ResponseWriter, detail string) {
	Error(w, http.StatusNotFound, "not found", detail)
}

// Conflict sends a 409 response
func Conflict(w http.ResponseWriter, detail string) {
	Error(w, http.StatusConflict, "conflict", detail)
}

// Gone sends a 410 response, used for expired stories
func Gone(w http.ResponseWriter, detail string) {
	Error(w, http.StatusGone, "gone", detail)
}

// InternalError sends a 500 response with a generic detail; the real
// cause stays in the server log.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal error", "internal server error")
}
