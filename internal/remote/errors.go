package remote

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fruitsalade/drive/internal/protocol"
)

// alreadyInTrashDetail is the error detail the server uses when trashing an
// entry that is already in the trash.
const alreadyInTrashDetail = "File or directory is already in the trash"

// Error is a non-success response from the API.
type Error struct {
	StatusCode int
	Errors     []protocol.ErrorObject
	// Body holds the raw response when it is not a JSON:API error document.
	Body string
}

func (e *Error) Error() string {
	if len(e.Errors) > 0 {
		first := e.Errors[0]
		msg := first.Detail
		if msg == "" {
			msg = first.Title
		}
		return fmt.Sprintf("remote error %d: %s", e.StatusCode, msg)
	}
	if e.Body != "" {
		return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("remote error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// HasDetail reports whether one of the error objects carries detail.
func (e *Error) HasDetail(detail string) bool {
	for _, obj := range e.Errors {
		if obj.Detail == detail {
			return true
		}
	}
	return strings.Contains(e.Body, detail)
}

// AsError returns the *Error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := AsError(err); ok {
		return e.StatusCode
	}
	return 0
}

// IsConflict reports a 409 response (name already taken).
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsQuotaExceeded reports a 413 response on upload.
func IsQuotaExceeded(err error) bool {
	return StatusCode(err) == http.StatusRequestEntityTooLarge
}

// IsAlreadyInTrash reports the trash error for an entry that was already trashed.
func IsAlreadyInTrash(err error) bool {
	e, ok := AsError(err)
	return ok && e.HasDetail(alreadyInTrashDetail)
}

// IsOffline reports whether err means the server could not be reached.
func IsOffline(err error) bool {
	return errors.Is(err, ErrOffline)
}
