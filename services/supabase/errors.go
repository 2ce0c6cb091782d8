package supabase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from PostgREST or GoTrue, decoded into
// whichever error shape the endpoint speaks.
type APIError struct {
	Status  int
	Code    string
	Message string
	Hint    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.Status)
}

// IsMissingTable reports whether the error is PostgREST failing to find
// the notes relation, which means the project schema was never set up.
// The store rewrites this into setup guidance instead of surfacing the
// raw message.
func (e *APIError) IsMissingTable() bool {
	return e.Code == "PGRST205" || strings.Contains(e.Message, "Could not find the table")
}

// postgrestError is the error body PostgREST returns.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// gotrueError covers the two error shapes GoTrue uses.
type gotrueError struct {
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: strings.TrimSpace(string(body))}

	var pg postgrestError
	if err := json.Unmarshal(body, &pg); err == nil && pg.Message != "" {
		apiErr.Code = pg.Code
		apiErr.Message = pg.Message
		apiErr.Hint = pg.Hint
		return apiErr
	}

	var gt gotrueError
	if err := json.Unmarshal(body, &gt); err == nil {
		switch {
		case gt.Msg != "":
			apiErr.Message = gt.Msg
		case gt.ErrorDescription != "":
			apiErr.Message = gt.ErrorDescription
		case gt.Error != "":
			apiErr.Message = gt.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return apiErr
}
