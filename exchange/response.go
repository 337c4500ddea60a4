package exchange

import (
	"encoding/json"
	"fmt"
)

// Response is the top-level reply of the /exchange endpoint.
type Response struct {
	Status string
	// Type is the "type" of an ok response body, e.g. "default" for
	// transfers or "order" for order placement.
	Type string
	// Data is the raw "data" of an ok response body, when present.
	Data         json.RawMessage
	ErrorMessage string // present when Status == "err"
}

// wire-level shape:
//
//	{
//	  "status": "ok" | "err",
//	  "response": <object or string>
//	}
type rawResponse struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type okBody struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// UnmarshalJSON handles both "ok" (object) and "err" (string) replies.
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw rawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal raw response: %w", err)
	}

	*r = Response{Status: raw.Status}

	switch raw.Status {
	case "ok":
		if len(raw.Response) == 0 || string(raw.Response) == "null" {
			return nil
		}
		var body okBody
		if err := json.Unmarshal(raw.Response, &body); err != nil {
			return fmt.Errorf("unmarshal ok response body: %w", err)
		}
		r.Type = body.Type
		r.Data = body.Data

	default:
		// "err" carries a string; anything else is kept verbatim
		var msg string
		if err := json.Unmarshal(raw.Response, &msg); err != nil {
			msg = string(raw.Response)
		}
		r.ErrorMessage = msg
	}

	return nil
}

func (r Response) IsOK() bool {
	return r.Status == "ok"
}

func (r Response) IsErr() bool {
	return !r.IsOK()
}

// StatusErrors returns the per-item errors of an ok response whose data
// carries a statuses list, e.g. {"statuses": [{"error": "..."}]}.
func (r Response) StatusErrors() []string {
	if len(r.Data) == 0 {
		return nil
	}

	var data struct {
		Statuses []json.RawMessage `json:"statuses"`
	}
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil
	}

	var errs []string
	for _, s := range data.Statuses {
		var status struct {
			Error *string `json:"error"`
		}
		if json.Unmarshal(s, &status) == nil && status.Error != nil {
			errs = append(errs, *status.Error)
		}
	}
	return errs
}

// ActionError is returned when the exchange accepts the request but rejects
// the action.
type ActionError struct {
	ActionType string
	Nonce      uint64
	Message    string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s action (nonce %d) rejected: %s", e.ActionType, e.Nonce, e.Message)
}
