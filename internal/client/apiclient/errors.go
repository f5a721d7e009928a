package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the display category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation blocks submission and is shown inline.
	KindValidation
	// KindNetwork covers transport failures and timeouts.
	KindNetwork
	// KindServer covers 5xx and any other unexpected response.
	KindServer
	// KindPermission is a missing or rejected credential.
	KindPermission
	// KindPlanLimit asks the user to upgrade.
	KindPlanLimit
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindPermission:
		return "permission"
	case KindPlanLimit:
		return "plan_limit"
	}
	return "unknown"
}

// Error codes the server puts in JSON error bodies.
const (
	CodePlanLimit       = "plan_limit"
	CodeVersionConflict = "version_conflict"
)

// Error is returned for every failed request.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Code != "":
		return fmt.Sprintf("%s error (status %d, %s): %s", e.Kind, e.Status, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the display category of err, or KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// CodeOf returns the server error code carried by err, if any.
func CodeOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// Validation wraps a client-side validation failure so it is displayed the
// same way as a 400 from the server.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// fromResponse classifies a non-2xx response.
func fromResponse(status int, body []byte) *Error {
	e := &Error{Status: status, Message: strings.TrimSpace(string(body))}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && (eb.Error != "" || eb.Code != "") {
		e.Message = eb.Error
		e.Code = eb.Code
	}

	switch {
	case status == http.StatusPaymentRequired || e.Code == CodePlanLimit:
		e.Kind = KindPlanLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindPermission
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity ||
		status == http.StatusConflict:
		e.Kind = KindValidation
	default:
		e.Kind = KindServer
	}
	return e
}
