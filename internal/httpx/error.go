package httpx

import (
	"fmt"
	"net/http"

	"github.com/adlstore/adls_sdk_go/internal/webhdfs"
)

// HTTPError represents a non-2xx HTTP response returned by the remote service.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	RequestID  string
	// Remote is set when the body is a RemoteException document.
	Remote *webhdfs.RemoteException
}

func newHTTPError(resp *http.Response, body []byte, requestID string) *HTTPError {
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header.Clone(),
		RequestID:  requestID,
		Remote:     webhdfs.ExtractRemoteException(body),
	}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Remote != nil {
		return fmt.Sprintf("http error: status=%d %s", e.StatusCode, e.Remote.String())
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, string(e.Body))
}

// Retryable reports whether the error should be considered transient.
func (e *HTTPError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		(e.StatusCode >= 500 && e.StatusCode <= 599)
}
