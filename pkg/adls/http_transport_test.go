package adls_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlstore/adls_sdk_go/pkg/adls"
	"github.com/adlstore/adls_sdk_go/pkg/adls/mock"
)

type wireRecord struct {
	method   string
	path     string
	rawQuery string
	header   http.Header
}

type recorder struct {
	mu      sync.Mutex
	records []wireRecord
}

func (r *recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.records = append(r.records, wireRecord{
			method:   req.Method,
			path:     req.URL.Path,
			rawQuery: req.URL.RawQuery,
			header:   req.Header.Clone(),
		})
		r.mu.Unlock()
		next.ServeHTTP(w, req)
	})
}

func (r *recorder) last() wireRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[len(r.records)-1]
}

func newHTTPClient(t *testing.T, opts ...adls.Option) (*adls.Client, *mock.Service, *recorder) {
	t.Helper()
	svc := newService(t)
	rec := &recorder{}
	srv := httptest.NewServer(rec.wrap(svc.Handler()))
	t.Cleanup(srv.Close)

	client, err := adls.New(srv.URL, opts...)
	require.NoError(t, err)
	return client, svc, rec
}

func TestHTTPTransportWireFormat(t *testing.T) {
	client, _, rec := newHTTPClient(t, adls.WithBearerToken("opaque"))
	ctx := context.Background()

	ok, err := client.Mkdir(ctx, "/data/new", "750")
	require.NoError(t, err)
	assert.True(t, ok)
	last := rec.last()
	assert.Equal(t, http.MethodPut, last.method)
	assert.Equal(t, "/webhdfs/v1/data/new", last.path)
	assert.Equal(t, "op=MKDIRS&api-version=2018-09-01&permission=750", last.rawQuery)
	assert.Equal(t, "Bearer opaque", last.header.Get("Authorization"))
	assert.NotEmpty(t, last.header.Get("x-ms-client-request-id"))

	require.NoError(t, client.ConcurrentAppend(ctx, "/data/log", adls.Region([]byte("a")), true))
	last = rec.last()
	assert.Equal(t, http.MethodPost, last.method)
	assert.Equal(t, "/WebHdfsExt/data/log", last.path)
	assert.Equal(t, "op=CONCURRENTAPPEND&api-version=2018-09-01&appendMode=autocreate", last.rawQuery)
	assert.Equal(t, "application/octet-stream", last.header.Get("Content-Type"))

	require.NoError(t, client.Concat(ctx, "/data/all.csv", []string{"/data/a.csv", "/data/b.csv"}, false))
	assert.Equal(t, "application/json", rec.last().header.Get("Content-Type"))
}

func TestHTTPTransportRoundTrip(t *testing.T) {
	client, svc, _ := newHTTPClient(t)
	ctx := context.Background()

	require.NoError(t, client.Create(ctx, "/up/file.txt", adls.Region([]byte("0123456789")), nil))
	require.NoError(t, client.Append(ctx, "/up/file.txt", 10, adls.Region([]byte("ab")), &adls.AppendOptions{SyncFlag: adls.SyncFlagClose}))

	data, ok := svc.ReadFile("/up/file.txt")
	require.True(t, ok)
	assert.Equal(t, "0123456789ab", string(data))

	buf := make([]byte, 4)
	n, err := client.Blocking().Open("/up/file.txt", 8, adls.Region(buf), "")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "89ab", string(buf))

	entry, err := client.GetFileStatus(ctx, "/up/file.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "file.txt", entry.Name)
	assert.Equal(t, int64(12), entry.Length)

	entries, err := client.ListStatus(ctx, "/data", &adls.ListOptions{Selection: adls.SelectionMinimal})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "/data/dir", entries[2].FullName)
	assert.Equal(t, adls.TypeDirectory, entries[2].Type)

	summary, err := client.GetContentSummary(ctx, "/up")
	require.NoError(t, err)
	assert.Equal(t, int64(12), summary.Length)
	assert.Equal(t, int64(1), summary.FileCount)
}

func TestHTTPTransportRemoteException(t *testing.T) {
	client, _, _ := newHTTPClient(t)

	_, err := client.Blocking().GetFileStatus("/nope", nil)
	require.Error(t, err)
	assert.Equal(t, adls.KindRemote, adls.KindOf(err))

	var opErr *adls.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, http.StatusNotFound, opErr.Status.HTTPStatus)
	assert.Equal(t, "FileNotFoundException", opErr.Status.RemoteException)
	assert.Contains(t, opErr.Status.RemoteMessage, "/nope")
	assert.NotEmpty(t, opErr.Status.RequestID)
}

func TestHTTPTransportRetriesTransientFailures(t *testing.T) {
	svc := newService(t)
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		svc.Handler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	client, err := adls.New(srv.URL, adls.WithRetryPolicy(adls.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}))
	require.NoError(t, err)

	require.NoError(t, client.Create(context.Background(), "/retried", adls.Region([]byte("payload")), nil))
	assert.Equal(t, int32(2), attempts.Load())
	data, _ := svc.ReadFile("/retried")
	assert.Equal(t, "payload", string(data))
}

func TestHTTPTransportDoesNotReplayAppends(t *testing.T) {
	svc := newService(t)
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			// The write lands but the reply is lost.
			svc.Handler().ServeHTTP(httptest.NewRecorder(), r)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		svc.Handler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	client, err := adls.New(srv.URL, adls.WithRetryPolicy(adls.RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}))
	require.NoError(t, err)

	err = client.ConcurrentAppend(context.Background(), "/log", adls.Region([]byte("once")), true)
	assert.Equal(t, adls.KindRemote, adls.KindOf(err))
	assert.Equal(t, int32(1), attempts.Load())
	data, _ := svc.ReadFile("/log")
	assert.Equal(t, "once", string(data))

	ok, err := client.Mkdir(context.Background(), "/after", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHTTPTransportUnparsableReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client, err := adls.New(srv.URL)
	require.NoError(t, err)
	_, err = client.Delete(context.Background(), "/x", false)
	assert.Equal(t, adls.KindParse, adls.KindOf(err))
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	_, err := adls.New("not a url")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "scheme and host"))
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("ADLS_ENDPOINT", "")
	_, err := adls.NewFromEnv()
	require.Error(t, err)

	svc := newService(t)
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()
	t.Setenv("ADLS_ENDPOINT", srv.URL)
	t.Setenv("ADLS_TOKEN", "tok")

	client, err := adls.NewFromEnv()
	require.NoError(t, err)
	ok, err := client.Mkdir(context.Background(), "/env", "")
	require.NoError(t, err)
	assert.True(t, ok)
}
