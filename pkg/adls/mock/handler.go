package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/adlstore/adls_sdk_go/internal/httpx"
	"github.com/adlstore/adls_sdk_go/internal/webhdfs"
	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

// FormHTTP marks calls that arrived through Handler.
const FormHTTP adls.Form = "http"

// Handler serves the REST protocol on top of the in-memory tree, so a real
// HTTP client can be pointed at the mock.
func (s *Service) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Service) serveHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := webhdfs.SplitURLPath(r.URL.Path)
	if !ok {
		writeRemote(w, remote(http.StatusNotFound, "FileNotFoundException", "unknown namespace in %s", r.URL.Path))
		return
	}
	opName := r.URL.Query().Get("op")
	spec, ok := webhdfs.Lookup(opName)
	if !ok {
		writeRemote(w, badRequest("unknown operation %q", opName))
		return
	}
	if r.Method != spec.Method {
		writeRemote(w, remote(http.StatusMethodNotAllowed, "UnsupportedOperationException",
			"%s requires %s, got %s", spec.Name, spec.Method, r.Method))
		return
	}

	query, err := orderedQuery(r.URL.RawQuery)
	if err != nil {
		writeRemote(w, badRequest("malformed query: %v", err))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeRemote(w, badRequest("read body: %v", err))
		return
	}

	req := &adls.Request{
		Op:          adls.Operation(spec.Name),
		Path:        p,
		Query:       query,
		Body:        adls.Region(body),
		ContentType: r.Header.Get("Content-Type"),
		Options:     adls.RequestOptions{RequestID: r.Header.Get(httpx.RequestIDHeader)},
	}
	resp, err := s.exchange(FormHTTP, req)
	if err != nil {
		var re *adls.RemoteError
		if !errors.As(err, &re) {
			re = remote(http.StatusInternalServerError, "RuntimeException", "%v", err)
		}
		writeRemote(w, re)
		return
	}

	if resp.RequestID != "" {
		w.Header().Set(httpx.RequestIDHeader, resp.RequestID)
	}
	if json.Valid(resp.Body) && spec.Name != string(adls.OpOpen) {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	status := resp.HTTPStatus
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body)
}

// orderedQuery keeps the wire order of parameters and drops the ones the
// transport adds to every request.
func orderedQuery(raw string) (*adls.QueryParams, error) {
	q := adls.NewQueryParams()
	if raw == "" {
		return q, nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		if name == "op" || name == "api-version" {
			continue
		}
		q.Set(name, value)
	}
	return q, nil
}

func writeRemote(w http.ResponseWriter, re *adls.RemoteError) {
	if re.RequestID != "" {
		w.Header().Set(httpx.RequestIDHeader, re.RequestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(re.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]webhdfs.RemoteException{
		"RemoteException": {
			Exception:     re.Exception,
			Message:       re.Message,
			JavaClassName: re.JavaClassName,
		},
	})
}
