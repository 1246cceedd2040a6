package adls

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/adlstore/adls_sdk_go/internal/httpx"
	"github.com/adlstore/adls_sdk_go/internal/webhdfs"
)

// HTTPTransport speaks the REST protocol through an httpx.Client.
type HTTPTransport struct {
	client     *httpx.Client
	apiVersion string
	logger     *zap.SugaredLogger
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport wraps an httpx.Client. An empty apiVersion selects
// webhdfs.APIVersion.
func NewHTTPTransport(client *httpx.Client, apiVersion string, logger *zap.SugaredLogger) *HTTPTransport {
	if apiVersion == "" {
		apiVersion = webhdfs.APIVersion
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &HTTPTransport{client: client, apiVersion: apiVersion, logger: logger}
}

// RoundTrip implements Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	if t == nil || t.client == nil {
		return nil, errors.New("adls: http transport not configured")
	}
	spec, ok := webhdfs.Lookup(string(req.Op))
	if !ok {
		return nil, errors.Errorf("adls: unknown operation %q", req.Op)
	}

	q := NewQueryParams()
	q.Set("op", spec.Name)
	q.Set("api-version", t.apiVersion)
	for _, name := range req.Query.Names() {
		v, _ := req.Query.Get(name)
		q.Set(name, v)
	}

	hreq := &httpx.Request{
		Method:       spec.Method,
		Path:         spec.URLPath(req.Path),
		RawQuery:     q.Encode(),
		RequestID:    req.Options.RequestID,
		DisableRetry: !spec.Idempotent,
	}
	if spec.SendsBody {
		payload := req.Body.Bytes()
		hreq.Body = bytes.NewReader(payload)
		hreq.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(payload)), nil
		}
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		hreq.Header = http.Header{"Content-Type": []string{contentType}}
	}

	resp, err := t.client.Do(ctx, hreq)
	if err != nil {
		var httpErr *httpx.HTTPError
		if errors.As(err, &httpErr) {
			return nil, toRemoteError(httpErr)
		}
		return nil, errors.Wrapf(err, "%s %s", spec.Name, req.Path)
	}

	out := &Response{HTTPStatus: resp.StatusCode, RequestID: hreq.RequestID}
	if req.Dest.Buf != nil {
		n, err := httpx.ReadFullAndClose(resp.Body, req.Dest.Bytes())
		if err != nil {
			return nil, errors.Wrap(err, "read response into destination")
		}
		out.N = n
		return out, nil
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	out.Body = body
	out.N = len(body)
	return out, nil
}

func toRemoteError(e *httpx.HTTPError) *RemoteError {
	re := &RemoteError{HTTPStatus: e.StatusCode, RequestID: e.RequestID}
	if e.Remote != nil {
		re.Exception = e.Remote.Exception
		re.Message = e.Remote.Message
		re.JavaClassName = e.Remote.JavaClassName
	} else {
		re.Message = string(bytes.TrimSpace(e.Body))
	}
	return re
}
