package adls

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/adlstore/adls_sdk_go/internal/httpx"
	"github.com/adlstore/adls_sdk_go/pkg/acl"
)

// AclCodec is the ACL grammar collaborator. acl.Codec is the default.
type AclCodec interface {
	ParseEntry(s string) (acl.Entry, error)
	Serialize(entries []acl.Entry, removeAcl bool) string
}

// Metrics receives one observation per call. A nil Metrics disables
// collection.
type Metrics interface {
	ObserveCall(op Operation, form Form, kind ErrorKind, d time.Duration)
	AddBytes(op Operation, direction string, n int)
}

// RetryPolicy configures the retries of the HTTP transport.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64
}

// Client dispatches file-store operations over a Transport. It keeps no
// per-call state and is safe for concurrent use.
type Client struct {
	transport Transport
	codec     AclCodec
	logger    *zap.SugaredLogger
	metrics   Metrics
	defaults  RequestOptions
}

type settings struct {
	httpOpts   []httpx.Option
	apiVersion string
	logger     *zap.SugaredLogger
	metrics    Metrics
	codec      AclCodec
	defaults   RequestOptions
}

// Option configures a Client.
type Option func(*settings)

// WithLogger sets the logger used by the client and its HTTP transport.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics installs a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithAclCodec replaces the ACL grammar implementation.
func WithAclCodec(codec AclCodec) Option {
	return func(s *settings) {
		if codec != nil {
			s.codec = codec
		}
	}
}

// WithRequestOptions sets the options attached to every request.
func WithRequestOptions(o RequestOptions) Option {
	return func(s *settings) {
		s.defaults = o
	}
}

// WithAPIVersion overrides the api-version sent by the HTTP transport.
func WithAPIVersion(v string) Option {
	return func(s *settings) {
		s.apiVersion = v
	}
}

// WithHTTPClient overrides the net/http client of the HTTP transport.
func WithHTTPClient(h *http.Client) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, httpx.WithHTTPClient(h))
	}
}

// WithBearerToken attaches an opaque token to every HTTP request.
func WithBearerToken(token string) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, httpx.WithBearerToken(token))
	}
}

// WithHeaders adds default headers to every HTTP request.
func WithHeaders(h http.Header) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, httpx.WithHeaders(h))
	}
}

// WithTimeout sets the per-attempt timeout of the HTTP transport.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, httpx.WithTimeout(d))
	}
}

// WithRetryPolicy configures the HTTP transport retries.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, httpx.WithRetryPolicy(httpx.RetryPolicy{
			MaxRetries: p.MaxRetries,
			BaseDelay:  p.BaseDelay,
			MaxDelay:   p.MaxDelay,
			Jitter:     p.Jitter,
		}))
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger: zap.NewNop().Sugar(),
		codec:  acl.Codec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New constructs a client speaking HTTP to baseURL, e.g.
// "https://account.azuredatalakestore.net".
func New(baseURL string, opts ...Option) (*Client, error) {
	s := newSettings(opts)
	httpOpts := append([]httpx.Option{httpx.WithLogger(s.logger.Named("http"))}, s.httpOpts...)
	cl, err := httpx.NewClient(baseURL, httpOpts...)
	if err != nil {
		return nil, err
	}
	return newClient(NewHTTPTransport(cl, s.apiVersion, s.logger.Named("http")), s), nil
}

// NewWithTransport uses a caller supplied transport, e.g. a mock. HTTP
// specific options are ignored.
func NewWithTransport(t Transport, opts ...Option) *Client {
	return newClient(t, newSettings(opts))
}

func newClient(t Transport, s *settings) *Client {
	if t == nil {
		panic("adls: transport is nil")
	}
	return &Client{
		transport: t,
		codec:     s.codec,
		logger:    s.logger,
		metrics:   s.metrics,
		defaults:  s.defaults,
	}
}

// Blocking returns the blocking form of the client. Its methods run the same
// validation and parsing on the calling goroutine, without a context, and
// put identical requests on the wire.
func (c *Client) Blocking() *Blocking {
	return &Blocking{c: c}
}

// call is the builder's output: everything needed for one exchange.
type call struct {
	query       *QueryParams
	body        ByteRegion
	contentType string
	dest        ByteRegion
}

// run is the single implementation behind both call forms. build validates
// input and returns the call, or records a failure in st and returns nil.
// parse, when set, turns the response into the typed result.
func run[T any](ctx context.Context, c *Client, inv invoker, op Operation, path string,
	build func(st *Status) *call, parse func(st *Status, resp *Response) T) (T, error) {
	var zero T
	if c == nil {
		panic("adls: client is nil")
	}

	st := newStatus()
	cl := build(st)

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveCall(op, inv.form, st.Kind, time.Since(start))
		}
		if !st.Successful {
			c.logger.Warnw("operation failed", "op", op, "path", path, "form", inv.form,
				"kind", st.Kind.String(), "http_status", st.HTTPStatus, "err", st.Message)
		}
	}()

	if !st.Successful {
		return zero, st.err(op, path)
	}

	resp := c.exchange(ctx, inv, st, op, path, cl)
	if !st.Successful {
		return zero, st.err(op, path)
	}

	var out T
	if parse != nil {
		out = parse(st, resp)
		if !st.Successful {
			return zero, st.err(op, path)
		}
	}
	return out, nil
}

func (c *Client) exchange(ctx context.Context, inv invoker, st *Status, op Operation, path string, cl *call) *Response {
	if ctx == nil {
		ctx = context.Background()
	}
	req := &Request{
		Op:          op,
		Path:        path,
		Query:       cl.query,
		Body:        cl.body,
		ContentType: cl.contentType,
		Dest:        cl.dest,
		Options:     c.defaults,
	}
	c.logger.Debugw("dispatch", "op", op, "path", path, "form", inv.form, "query", cl.query.Encode())

	resp, err := inv.invoke(ctx, c.transport, req)
	if err != nil {
		st.fail(classifyTransportError(err), err)
		return nil
	}
	if resp == nil {
		st.fail(KindTransport, errors.New("transport returned no response"))
		return nil
	}
	st.HTTPStatus = resp.HTTPStatus
	st.RequestID = resp.RequestID

	if c.metrics != nil {
		if n := cl.body.Count; n > 0 {
			c.metrics.AddBytes(op, "upload", n)
		}
		if cl.dest.Buf != nil && resp.N > 0 {
			c.metrics.AddBytes(op, "download", resp.N)
		}
	}
	return resp
}

func encodeJSON(payload any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func checkRegion(st *Status, what string, r ByteRegion) bool {
	if !r.valid() {
		st.invalid("%s: region offset=%d count=%d exceeds buffer of %d bytes", what, r.Offset, r.Count, len(r.Buf))
		return false
	}
	return true
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
