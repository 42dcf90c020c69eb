package errors

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/matzehuels/flowdot/pkg/cache"
	"github.com/matzehuels/flowdot/pkg/io"
	"github.com/matzehuels/flowdot/pkg/render/dot"
	"github.com/matzehuels/flowdot/pkg/runstate"
)

var sentinels = []struct {
	err  error
	code Code
}{
	{dot.ErrUnknownEndpoint, ErrCodeUnknownEndpoint},
	{dot.ErrCyclicGroupNesting, ErrCodeCyclicGroupNesting},
	{dot.ErrInvalidEdge, ErrCodeInvalidEdge},
	{dot.ErrDuplicateID, ErrCodeDuplicateID},
	{dot.ErrInvalidID, ErrCodeInvalidID},
	{dot.ErrInvalidNode, ErrCodeInvalidInput},
	{io.ErrUnknownFormat, ErrCodeInvalidFormat},
	{io.ErrMalformed, ErrCodeInvalidFormat},
	{os.ErrNotExist, ErrCodeFileNotFound},
	{runstate.ErrNoRun, ErrCodeNotFound},
	{cache.ErrNetwork, ErrCodeNetwork},
	{context.DeadlineExceeded, ErrCodeTimeout},
}

// Classify returns err as an *Error. Errors that already carry a code are
// returned unchanged; known sentinels from the renderer, the file codecs and
// the backends get their code; anything else is ErrCodeInternal. The
// original error is kept as Cause. Classify(nil) is nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return &Error{Code: s.code, Message: err.Error(), Cause: err}
		}
	}
	return &Error{Code: ErrCodeInternal, Message: err.Error(), Cause: err}
}

// HTTPStatus maps an error code to an HTTP status code.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidID, ErrCodeInvalidURL:
		return http.StatusBadRequest
	case ErrCodeUnknownEndpoint, ErrCodeCyclicGroupNesting, ErrCodeInvalidEdge, ErrCodeDuplicateID:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
