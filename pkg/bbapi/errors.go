package bbapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Details    []ErrorDetail
	Body       []byte
}

// ErrorDetail is one entry of the provider's error list.
type ErrorDetail struct {
	Code       string `json:"codigo"`
	Message    string `json:"mensagem"`
	Occurrence string `json:"ocorrencia,omitempty"`
	Version    string `json:"versao,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("bbapi: status %d", e.StatusCode)
	}
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		if d.Code != "" {
			msgs = append(msgs, d.Code+": "+d.Message)
		} else {
			msgs = append(msgs, d.Message)
		}
	}
	return fmt.Sprintf("bbapi: status %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

// Temporary reports whether the request may succeed if repeated later.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is an APIError with status 401 or 403.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// errorBody covers the shapes the gateway answers with: the cobrança "erros"
// list, the English "errors" list, OAuth errors and bare gateway messages.
type errorBody struct {
	Erros  []ErrorDetail `json:"erros"`
	Errors []struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"errors"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: raw}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		if msg := strings.TrimSpace(string(raw)); msg != "" && len(msg) < 512 {
			apiErr.Details = []ErrorDetail{{Message: msg}}
		}
		return apiErr
	}

	apiErr.Details = append(apiErr.Details, body.Erros...)
	for _, e := range body.Errors {
		apiErr.Details = append(apiErr.Details, ErrorDetail{
			Code:    strings.Trim(string(e.Code), `"`),
			Message: e.Message,
		})
	}
	if len(apiErr.Details) == 0 {
		switch {
		case body.ErrorDescription != "":
			apiErr.Details = []ErrorDetail{{Code: body.Error, Message: body.ErrorDescription}}
		case body.Message != "":
			apiErr.Details = []ErrorDetail{{Code: body.Error, Message: body.Message}}
		case body.Error != "":
			apiErr.Details = []ErrorDetail{{Message: body.Error}}
		}
	}
	return apiErr
}
