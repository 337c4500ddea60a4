package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// ClientError is a 4xx reply. Code and Data are filled when the body is a
// JSON error object, otherwise Msg holds the raw body.
type ClientError struct {
	StatusCode int64
	Code       string
	Msg        string
	Headers    http.Header
	Data       any
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error (status %d): %s", e.StatusCode, e.Msg)
}

// ServerError is a 5xx reply.
type ServerError struct {
	StatusCode int64
	Text       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Text)
}

// errorBody covers both {"code","msg","data"} and the exchange's
// {"error": "..."} replies.
type errorBody struct {
	Code  string `json:"code"`
	Msg   string `json:"msg"`
	Error string `json:"error"`
	Data  any    `json:"data"`
}

func handleException(resp *resty.Response) error {
	status := int64(resp.StatusCode())
	body := resp.Body()

	switch {
	case status < http.StatusBadRequest:
		return nil
	case status >= http.StatusInternalServerError:
		return &ServerError{StatusCode: status, Text: string(body)}
	}

	clientErr := &ClientError{
		StatusCode: status,
		Msg:        string(body),
		Headers:    resp.Header(),
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return clientErr
	}

	switch {
	case parsed.Code != "" || parsed.Msg != "":
		clientErr.Code = parsed.Code
		clientErr.Msg = parsed.Msg
		clientErr.Data = parsed.Data
	case parsed.Error != "":
		clientErr.Msg = parsed.Error
	}
	return clientErr
}
