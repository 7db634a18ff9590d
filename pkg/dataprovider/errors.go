package dataprovider

import (
	"fmt"

	"github.com/telhawk-systems/jsonapi-provider/pkg/jsonapi"
)

// HTTPError is returned when the server answers with a non-2xx status. The
// status and raw body are passed through untouched.
type HTTPError struct {
	Status int
	Body   []byte
	Errors []jsonapi.ErrorObject
}

func newHTTPError(resp *Response) *HTTPError {
	e := &HTTPError{Status: resp.Status, Body: resp.Body}
	// Best effort: error bodies are not always JSON:API documents.
	if doc, err := jsonapi.Decode(resp.Body); err == nil {
		e.Errors = doc.Errors
	}
	return e
}

func (e *HTTPError) Error() string {
	if len(e.Errors) > 0 {
		first := e.Errors[0]
		switch {
		case first.Title != "" && first.Detail != "":
			return fmt.Sprintf("request failed with status %d: %s: %s", e.Status, first.Title, first.Detail)
		case first.Detail != "":
			return fmt.Sprintf("request failed with status %d: %s", e.Status, first.Detail)
		case first.Title != "":
			return fmt.Sprintf("request failed with status %d: %s", e.Status, first.Title)
		}
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
