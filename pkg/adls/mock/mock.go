// Package mock provides an in-memory file-store service for tests, examples
// and the sandbox server. Service implements adls.Transport and
// adls.BlockingTransport directly and serves the REST protocol through
// Handler.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

// Call is one recorded exchange.
type Call struct {
	Op    adls.Operation
	Path  string
	Query string
	Body  []byte
	// ContentType is the declared payload type, if any.
	ContentType string
	// Form is the client form that issued the call.
	Form adls.Form
}

// Service is an in-memory file tree with a trash, ACLs and a call recorder.
type Service struct {
	mu        sync.Mutex
	nodes     map[string]*node
	trash     []*trashItem
	seq       int
	owner     string
	group     string
	now       func() time.Time
	calls     []Call
	replies   map[adls.Operation][]byte
	failures  map[adls.Operation]error
	failTimes map[adls.Operation]int
}

var (
	_ adls.Transport         = (*Service)(nil)
	_ adls.BlockingTransport = (*Service)(nil)
)

// Option configures a Service.
type Option func(*Service)

// WithOwner sets the owner and group assigned to new entries.
func WithOwner(owner, group string) Option {
	return func(s *Service) {
		s.owner = owner
		s.group = group
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a service holding only the root directory.
func New(opts ...Option) *Service {
	s := &Service{
		nodes:     make(map[string]*node),
		owner:     "mockuser",
		group:     "mockgroup",
		now:       func() time.Time { return time.Now().UTC() },
		replies:   make(map[adls.Operation][]byte),
		failures:  make(map[adls.Operation]error),
		failTimes: make(map[adls.Operation]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.nodes["/"] = s.newNode(true, "")
	return s
}

// RoundTrip implements adls.Transport.
func (s *Service) RoundTrip(ctx context.Context, req *adls.Request) (*adls.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.exchange(adls.FormContext, req)
}

// RoundTripBlocking implements adls.BlockingTransport.
func (s *Service) RoundTripBlocking(req *adls.Request) (*adls.Response, error) {
	return s.exchange(adls.FormBlocking, req)
}

func (s *Service) exchange(form adls.Form, req *adls.Request) (*adls.Response, error) {
	body := append([]byte(nil), req.Body.Bytes()...)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{
		Op:          req.Op,
		Path:        req.Path,
		Query:       req.Query.Encode(),
		Body:        body,
		ContentType: req.ContentType,
		Form:        form,
	})

	requestID := req.Options.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	if err := s.injectedFailure(req.Op); err != nil {
		return nil, err
	}
	if raw, ok := s.replies[req.Op]; ok {
		return &adls.Response{Body: append([]byte(nil), raw...), N: len(raw), HTTPStatus: 200, RequestID: requestID}, nil
	}

	res, err := s.serve(req.Op, req.Path, req.Query, body)
	if err != nil {
		if re, ok := err.(*adls.RemoteError); ok {
			re.RequestID = requestID
		}
		return nil, err
	}

	resp := &adls.Response{HTTPStatus: res.status, RequestID: requestID}
	if req.Dest.Buf != nil {
		resp.N = copy(req.Dest.Bytes(), res.data)
		return resp, nil
	}
	resp.Body = res.body
	if res.data != nil {
		resp.Body = res.data
	}
	resp.N = len(resp.Body)
	return resp, nil
}

func (s *Service) injectedFailure(op adls.Operation) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	if n := s.failTimes[op]; n > 0 {
		if n == 1 {
			delete(s.failures, op)
			delete(s.failTimes, op)
		} else {
			s.failTimes[op] = n - 1
		}
	}
	return err
}

// SetReply makes every later op call succeed with raw as the response body,
// bypassing the tree.
func (s *Service) SetReply(op adls.Operation, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[op] = append([]byte(nil), raw...)
}

// Fail makes op return err. times <= 0 fails every call until ClearFailures.
func (s *Service) Fail(op adls.Operation, err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
	s.failTimes[op] = times
}

// ClearFailures drops every injected failure and reply override.
func (s *Service) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[adls.Operation]error)
	s.failTimes = make(map[adls.Operation]int)
	s.replies = make(map[adls.Operation][]byte)
}

// Calls returns a copy of the recorded exchanges in order.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns the number of recorded exchanges.
func (s *Service) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// ResetCalls clears the call recorder.
func (s *Service) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// ReadFile returns a copy of a file's contents.
func (s *Service) ReadFile(p string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[normalizePath(p)]
	if !ok || n.dir {
		return nil, false
	}
	return append([]byte(nil), n.data...), true
}

// Exists reports whether p is present in the tree.
func (s *Service) Exists(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[normalizePath(p)]
	return ok
}
