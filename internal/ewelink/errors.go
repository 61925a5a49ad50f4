package ewelink

import "fmt"

// APIError is a non-success answer from the cloud: either an HTTP-level
// failure or an envelope with a non-zero error code.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("ewelink api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("ewelink http %d: %s", e.StatusCode, e.Message)
}
