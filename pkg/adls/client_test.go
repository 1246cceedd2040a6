package adls_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/adlstore/adls_sdk_go/pkg/acl"
	"github.com/adlstore/adls_sdk_go/pkg/adls"
	"github.com/adlstore/adls_sdk_go/pkg/adls/mock"
)

const seedYAML = `
owner: alice
group: staff
entries:
  - path: /data/a.csv
    content: "hello"
  - path: /data/b.csv
    content: "world"
  - path: /data/dir
    dir: true
    acl: ["user:bob:r-x"]
`

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) *mock.Service {
	t.Helper()
	svc := mock.New(mock.WithClock(func() time.Time { return fixedNow }))
	seed, err := mock.ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.NoError(t, svc.Seed(seed))
	return svc
}

func newClient(t *testing.T) (*adls.Client, *mock.Service) {
	t.Helper()
	svc := newService(t)
	return adls.NewWithTransport(svc), svc
}

type dualOp struct {
	name string
	ctx  func(c *adls.Client) error
	blk  func(b *adls.Blocking) error
}

func dualOps() []dualOp {
	ctx := context.Background()
	payload := []byte("xxpayloadxx")
	region := adls.ByteRegion{Buf: payload, Offset: 2, Count: 7}
	entries := []acl.Entry{{Scope: acl.ScopeAccess, Type: acl.TypeUser, Name: "carol", Action: acl.ActionRead}}

	return []dualOp{
		{"create",
			func(c *adls.Client) error {
				return c.Create(ctx, "/data/new.bin", region, &adls.CreateOptions{Overwrite: true, LeaseID: "l1", SyncFlag: adls.SyncFlagClose})
			},
			func(b *adls.Blocking) error {
				return b.Create("/data/new.bin", region, &adls.CreateOptions{Overwrite: true, LeaseID: "l1", SyncFlag: adls.SyncFlagClose})
			}},
		{"append",
			func(c *adls.Client) error {
				return c.Append(ctx, "/data/a.csv", 5, region, &adls.AppendOptions{SessionID: "s"})
			},
			func(b *adls.Blocking) error {
				return b.Append("/data/a.csv", 5, region, &adls.AppendOptions{SessionID: "s"})
			}},
		{"concurrent append",
			func(c *adls.Client) error { return c.ConcurrentAppend(ctx, "/data/log", region, true) },
			func(b *adls.Blocking) error { return b.ConcurrentAppend("/data/log", region, true) }},
		{"open",
			func(c *adls.Client) error {
				_, err := c.Open(ctx, "/data/a.csv", 1, adls.Region(make([]byte, 3)), "s")
				return err
			},
			func(b *adls.Blocking) error {
				_, err := b.Open("/data/a.csv", 1, adls.Region(make([]byte, 3)), "s")
				return err
			}},
		{"mkdir",
			func(c *adls.Client) error { _, err := c.Mkdir(ctx, "/data/x/y", "750"); return err },
			func(b *adls.Blocking) error { _, err := b.Mkdir("/data/x/y", "750"); return err }},
		{"delete",
			func(c *adls.Client) error { _, err := c.Delete(ctx, "/data/dir", true); return err },
			func(b *adls.Blocking) error { _, err := b.Delete("/data/dir", true); return err }},
		{"rename",
			func(c *adls.Client) error { _, err := c.Rename(ctx, "/data/a.csv", "/data/c.csv", true); return err },
			func(b *adls.Blocking) error { _, err := b.Rename("/data/a.csv", "/data/c.csv", true); return err }},
		{"concat",
			func(c *adls.Client) error {
				return c.Concat(ctx, "/data/all.csv", []string{"/data/a.csv", "/data/b.csv"}, false)
			},
			func(b *adls.Blocking) error {
				return b.Concat("/data/all.csv", []string{"/data/a.csv", "/data/b.csv"}, false)
			}},
		{"get file status",
			func(c *adls.Client) error {
				_, err := c.GetFileStatus(ctx, "/data/a.csv", &adls.StatusOptions{Repr: adls.ReprOID, ConsistentLength: true})
				return err
			},
			func(b *adls.Blocking) error {
				_, err := b.GetFileStatus("/data/a.csv", &adls.StatusOptions{Repr: adls.ReprOID, ConsistentLength: true})
				return err
			}},
		{"list status",
			func(c *adls.Client) error {
				_, err := c.ListStatus(ctx, "/data", &adls.ListOptions{ListSize: 1, Selection: adls.SelectionExtended})
				return err
			},
			func(b *adls.Blocking) error {
				_, err := b.ListStatus("/data", &adls.ListOptions{ListSize: 1, Selection: adls.SelectionExtended})
				return err
			}},
		{"content summary",
			func(c *adls.Client) error { _, err := c.GetContentSummary(ctx, "/data"); return err },
			func(b *adls.Blocking) error { _, err := b.GetContentSummary("/data"); return err }},
		{"enumerate deleted",
			func(c *adls.Client) error { _, err := c.EnumerateDeletedItems(ctx, "data", "", 10); return err },
			func(b *adls.Blocking) error { _, err := b.EnumerateDeletedItems("data", "", 10); return err }},
		{"restore deleted",
			func(c *adls.Client) error {
				return c.RestoreDeletedItems(ctx, adls.RestoreOptions{Token: "/$Trash/9/x", Destination: "/x"})
			},
			func(b *adls.Blocking) error {
				return b.RestoreDeletedItems(adls.RestoreOptions{Token: "/$Trash/9/x", Destination: "/x"})
			}},
		{"set expiry",
			func(c *adls.Client) error { return c.SetExpiry(ctx, "/data/a.csv", adls.ExpiryRelativeToNow, 60000) },
			func(b *adls.Blocking) error { return b.SetExpiry("/data/a.csv", adls.ExpiryRelativeToNow, 60000) }},
		{"check access",
			func(c *adls.Client) error { return c.CheckAccess(ctx, "/data/a.csv", "rw-") },
			func(b *adls.Blocking) error { return b.CheckAccess("/data/a.csv", "rw-") }},
		{"set permission",
			func(c *adls.Client) error { return c.SetPermission(ctx, "/data/a.csv", "0600") },
			func(b *adls.Blocking) error { return b.SetPermission("/data/a.csv", "0600") }},
		{"set owner",
			func(c *adls.Client) error { return c.SetOwner(ctx, "/data/a.csv", "bob", "") },
			func(b *adls.Blocking) error { return b.SetOwner("/data/a.csv", "bob", "") }},
		{"set times",
			func(c *adls.Client) error { return c.SetTimes(ctx, "/data/a.csv", -1, 1700000000000) },
			func(b *adls.Blocking) error { return b.SetTimes("/data/a.csv", -1, 1700000000000) }},
		{"modify acl entries",
			func(c *adls.Client) error { return c.ModifyAclEntries(ctx, "/data/dir", entries) },
			func(b *adls.Blocking) error { return b.ModifyAclEntries("/data/dir", entries) }},
		{"set acl spec",
			func(c *adls.Client) error { return c.SetAclSpec(ctx, "/data/dir", "user::rwx,group::r-x,other::---") },
			func(b *adls.Blocking) error { return b.SetAclSpec("/data/dir", "user::rwx,group::r-x,other::---") }},
		{"remove acl entries",
			func(c *adls.Client) error { return c.RemoveAclEntries(ctx, "/data/dir", entries) },
			func(b *adls.Blocking) error { return b.RemoveAclEntries("/data/dir", entries) }},
		{"remove default acl",
			func(c *adls.Client) error { return c.RemoveDefaultAcl(ctx, "/data/dir") },
			func(b *adls.Blocking) error { return b.RemoveDefaultAcl("/data/dir") }},
		{"remove acl",
			func(c *adls.Client) error { return c.RemoveAcl(ctx, "/data/dir") },
			func(b *adls.Blocking) error { return b.RemoveAcl("/data/dir") }},
		{"get acl status",
			func(c *adls.Client) error { _, err := c.GetAclStatus(ctx, "/data/dir", adls.ReprUPN); return err },
			func(b *adls.Blocking) error { _, err := b.GetAclStatus("/data/dir", adls.ReprUPN); return err }},
	}
}

func TestBothFormsSendIdenticalRequests(t *testing.T) {
	for _, op := range dualOps() {
		t.Run(op.name, func(t *testing.T) {
			ctxClient, ctxSvc := newClient(t)
			blkClient, blkSvc := newClient(t)

			ctxErr := op.ctx(ctxClient)
			blkErr := op.blk(blkClient.Blocking())
			assert.Equal(t, adls.KindOf(ctxErr), adls.KindOf(blkErr))

			ctxCalls, blkCalls := ctxSvc.Calls(), blkSvc.Calls()
			require.Len(t, ctxCalls, 1)
			require.Len(t, blkCalls, 1)
			assert.Equal(t, adls.FormContext, ctxCalls[0].Form)
			assert.Equal(t, adls.FormBlocking, blkCalls[0].Form)

			ctxCalls[0].Form, blkCalls[0].Form = "", ""
			assert.Equal(t, ctxCalls[0], blkCalls[0])
		})
	}
}

// contextOnly hides RoundTripBlocking so the blocking form has to fall back
// to RoundTrip.
type contextOnly struct {
	svc *mock.Service
}

func (c contextOnly) RoundTrip(ctx context.Context, req *adls.Request) (*adls.Response, error) {
	return c.svc.RoundTrip(ctx, req)
}

func TestBlockingFormFallsBackToRoundTrip(t *testing.T) {
	svc := newService(t)
	client := adls.NewWithTransport(contextOnly{svc: svc})

	ok, err := client.Blocking().Mkdir("/fallback", "")
	require.NoError(t, err)
	assert.True(t, ok)
	require.Equal(t, 1, svc.CallCount())
	assert.Equal(t, adls.FormContext, svc.Calls()[0].Form)
}

// optionsRecorder keeps the options of the last blocking exchange.
type optionsRecorder struct {
	*mock.Service
	last adls.RequestOptions
}

func (r *optionsRecorder) RoundTripBlocking(req *adls.Request) (*adls.Response, error) {
	r.last = req.Options
	return r.Service.RoundTripBlocking(req)
}

func TestBlockingTransportReceivesTimeout(t *testing.T) {
	rec := &optionsRecorder{Service: newService(t)}
	client := adls.NewWithTransport(rec, adls.WithRequestOptions(adls.RequestOptions{Timeout: 3 * time.Second}))

	_, err := client.Blocking().Mkdir("/timed", "")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, rec.last.Timeout)
}

func TestBlockingFallbackHonoursTimeout(t *testing.T) {
	client := adls.NewWithTransport(slowTransport{delay: 50 * time.Millisecond},
		adls.WithRequestOptions(adls.RequestOptions{Timeout: 10 * time.Millisecond}))

	ok, err := client.Blocking().Mkdir("/slow", "")
	assert.False(t, ok)
	assert.Equal(t, adls.KindCanceled, adls.KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestConcatInvalidSourcesIssueNoCalls(t *testing.T) {
	cases := map[string][]string{
		"empty":        {},
		"blank":        {"/data/a.csv", " "},
		"destination":  {"/data/a.csv", "/data/all.csv"},
		"duplicate":    {"/data/a.csv", "/data/b.csv", "/data/a.csv"},
		"empty string": {""},
	}
	for name, sources := range cases {
		t.Run(name, func(t *testing.T) {
			client, svc := newClient(t)
			err := client.Concat(context.Background(), "/data/all.csv", sources, false)
			assert.Equal(t, adls.KindInvalidArgument, adls.KindOf(err))
			err = client.Blocking().Concat("/data/all.csv", sources, false)
			assert.Equal(t, adls.KindInvalidArgument, adls.KindOf(err))
			assert.Zero(t, svc.CallCount())
		})
	}
}

func TestConcatSendsJSONSources(t *testing.T) {
	client, svc := newClient(t)
	require.NoError(t, client.Concat(context.Background(), "/data/all.csv", []string{"/data/a.csv", "/data/b.csv"}, true))

	call := svc.Calls()[0]
	assert.Equal(t, adls.OpConcat, call.Op)
	assert.Equal(t, "application/json", call.ContentType)
	assert.JSONEq(t, `{"sources":["/data/a.csv","/data/b.csv"]}`, string(call.Body))
	assert.Equal(t, "deleteSourceDirectory=true", call.Query)

	data, ok := svc.ReadFile("/data/all.csv")
	require.True(t, ok)
	assert.Equal(t, "helloworld", string(data))
	assert.False(t, svc.Exists("/data/a.csv"))
}

func TestListStatusComposesFullNames(t *testing.T) {
	client, svc := newClient(t)
	svc.SetReply(adls.OpListStatus, []byte(`{"FileStatuses":{"FileStatus":[{"name":"a.csv"},{"name":"b.csv"}]}}`))

	entries, err := client.ListStatus(context.Background(), "/data", nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/data/a.csv", entries[0].FullName)
	assert.Equal(t, "/data/b.csv", entries[1].FullName)
}

func TestGetFileStatusEmptyNameKeepsPath(t *testing.T) {
	client, svc := newClient(t)
	svc.SetReply(adls.OpGetFileStatus, []byte(`{"FileStatus":{"name":"","type":"FILE","length":3}}`))

	entry, err := client.GetFileStatus(context.Background(), "/data/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "/data/x", entry.FullName)
	assert.Equal(t, int64(3), entry.Length)
}

func TestGetFileStatusFromTree(t *testing.T) {
	client, _ := newClient(t)
	entry, err := client.Blocking().GetFileStatus("/data/a.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", entry.Name)
	assert.Equal(t, "/data/a.csv", entry.FullName)
	assert.Equal(t, adls.TypeFile, entry.Type)
	assert.Equal(t, int64(5), entry.Length)
	assert.Equal(t, "alice", entry.User)
	assert.Equal(t, fixedNow, entry.LastModifiedTime)
}

func TestEnumerateDeletedItemsBlankHintPanics(t *testing.T) {
	client, svc := newClient(t)
	assert.Panics(t, func() {
		_, _ = client.EnumerateDeletedItems(context.Background(), "  ", "", 10)
	})
	assert.Panics(t, func() {
		_, _ = client.Blocking().EnumerateDeletedItems("", "", 10)
	})
	assert.Zero(t, svc.CallCount())
}

func TestEnumerateDeletedItemsClampsPageSize(t *testing.T) {
	client, svc := newClient(t)
	_, err := client.EnumerateDeletedItems(context.Background(), "data", "", 10000)
	require.NoError(t, err)
	assert.Equal(t, "hint=data&listSize=4000", svc.Calls()[0].Query)
}

func TestUnparsablePayloadFailsEveryParsingOperation(t *testing.T) {
	ctx := context.Background()
	parsing := []struct {
		op   adls.Operation
		call func(c *adls.Client) error
	}{
		{adls.OpMkdirs, func(c *adls.Client) error {
			v, err := c.Mkdir(ctx, "/p", "")
			assert.False(t, v)
			return err
		}},
		{adls.OpDelete, func(c *adls.Client) error {
			v, err := c.Delete(ctx, "/data/a.csv", false)
			assert.False(t, v)
			return err
		}},
		{adls.OpRename, func(c *adls.Client) error {
			v, err := c.Rename(ctx, "/data/a.csv", "/data/z", false)
			assert.False(t, v)
			return err
		}},
		{adls.OpGetFileStatus, func(c *adls.Client) error {
			v, err := c.GetFileStatus(ctx, "/data/a.csv", nil)
			assert.Nil(t, v)
			return err
		}},
		{adls.OpListStatus, func(c *adls.Client) error {
			v, err := c.ListStatus(ctx, "/data", nil)
			assert.Nil(t, v)
			return err
		}},
		{adls.OpEnumerateDeletedItems, func(c *adls.Client) error {
			v, err := c.EnumerateDeletedItems(ctx, "data", "", 1)
			assert.Nil(t, v)
			return err
		}},
		{adls.OpGetAclStatus, func(c *adls.Client) error {
			v, err := c.GetAclStatus(ctx, "/data", adls.ReprDefault)
			assert.Nil(t, v)
			return err
		}},
		{adls.OpGetContentSummary, func(c *adls.Client) error {
			v, err := c.GetContentSummary(ctx, "/data")
			assert.Nil(t, v)
			return err
		}},
	}
	for _, body := range []string{"<html>busy</html>", "", `{"unexpected":`, `[]`} {
		for _, tc := range parsing {
			t.Run(fmt.Sprintf("%s/%q", tc.op, body), func(t *testing.T) {
				client, svc := newClient(t)
				svc.SetReply(tc.op, []byte(body))

				err := tc.call(client)
				require.Error(t, err)
				assert.Equal(t, adls.KindParse, adls.KindOf(err))

				var opErr *adls.OpError
				require.True(t, errors.As(err, &opErr))
				assert.False(t, opErr.Status.Successful)
				assert.NotEmpty(t, opErr.Status.Message)
			})
		}
	}
}

func TestCanceledContextSkipsTransport(t *testing.T) {
	client, svc := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Mkdir(ctx, "/canceled", "")
	require.Error(t, err)
	assert.Equal(t, adls.KindCanceled, adls.KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, svc.CallCount())
}

// slowTransport ignores cancellation and answers after a delay.
type slowTransport struct {
	delay time.Duration
}

func (s slowTransport) RoundTrip(context.Context, *adls.Request) (*adls.Response, error) {
	time.Sleep(s.delay)
	return &adls.Response{Body: []byte(`{"boolean":true}`), HTTPStatus: 200}, nil
}

func TestCancellationWinsOverLateSuccess(t *testing.T) {
	client := adls.NewWithTransport(slowTransport{delay: 50 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ok, err := client.Mkdir(ctx, "/slow", "")
	assert.False(t, ok)
	assert.Equal(t, adls.KindCanceled, adls.KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestConcurrentAppendNeverCollides(t *testing.T) {
	client, svc := newClient(t)
	ctx := context.Background()
	require.NoError(t, client.Create(ctx, "/logs/app.log", adls.ByteRegion{}, nil))

	const writers = 16
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < writers; i++ {
		line := []byte(fmt.Sprintf("line-%02d\n", i))
		g.Go(func() error {
			return client.ConcurrentAppend(gctx, "/logs/app.log", adls.Region(line), false)
		})
	}
	require.NoError(t, g.Wait())

	data, ok := svc.ReadFile("/logs/app.log")
	require.True(t, ok)
	assert.Len(t, data, writers*len("line-00\n"))
}

func TestConcurrentAppendTwiceSamePath(t *testing.T) {
	client, svc := newClient(t)
	b := client.Blocking()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = b.ConcurrentAppend("/data/a.csv", adls.Region([]byte("!")), false)
		}()
	}
	wg.Wait()
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])

	data, _ := svc.ReadFile("/data/a.csv")
	assert.Equal(t, "hello!!", string(data))
}

func TestConcurrentAppendWithoutAutoCreateFailsOnMissingFile(t *testing.T) {
	client, _ := newClient(t)
	err := client.ConcurrentAppend(context.Background(), "/missing.log", adls.Region([]byte("x")), false)
	assert.Equal(t, adls.KindRemote, adls.KindOf(err))

	require.NoError(t, client.ConcurrentAppend(context.Background(), "/missing.log", adls.Region([]byte("x")), true))
}

func TestRemoteErrorIsReported(t *testing.T) {
	client, _ := newClient(t)
	_, err := client.GetFileStatus(context.Background(), "/nope", nil)
	require.Error(t, err)
	assert.Equal(t, adls.KindRemote, adls.KindOf(err))

	var opErr *adls.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, adls.OpGetFileStatus, opErr.Op)
	assert.Equal(t, "/nope", opErr.Path)
	assert.Equal(t, 404, opErr.Status.HTTPStatus)
	assert.Equal(t, "FileNotFoundException", opErr.Status.RemoteException)
	assert.NotEmpty(t, opErr.Status.RequestID)

	var remote *adls.RemoteError
	assert.True(t, errors.As(err, &remote))
}

func TestTransportFailureInjection(t *testing.T) {
	client, svc := newClient(t)
	svc.Fail(adls.OpMkdirs, errors.New("connection reset by peer"), 1)

	_, err := client.Mkdir(context.Background(), "/flaky", "")
	assert.Equal(t, adls.KindTransport, adls.KindOf(err))
	assert.Contains(t, err.Error(), "connection reset")

	ok, err := client.Mkdir(context.Background(), "/flaky", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenReadsIntoRegion(t *testing.T) {
	client, _ := newClient(t)
	buf := []byte("..........")
	n, err := client.Open(context.Background(), "/data/b.csv", 1, adls.ByteRegion{Buf: buf, Offset: 2, Count: 6}, "")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "..orld....", string(buf))
}

func TestInvalidRegionsAreRejected(t *testing.T) {
	client, svc := newClient(t)
	bad := adls.ByteRegion{Buf: make([]byte, 4), Offset: 3, Count: 2}

	err := client.Create(context.Background(), "/f", bad, nil)
	assert.Equal(t, adls.KindInvalidArgument, adls.KindOf(err))
	_, err = client.Open(context.Background(), "/data/a.csv", 0, bad, "")
	assert.Equal(t, adls.KindInvalidArgument, adls.KindOf(err))
	_, err = client.Open(context.Background(), "/data/a.csv", -1, adls.Region(make([]byte, 1)), "")
	assert.Equal(t, adls.KindInvalidArgument, adls.KindOf(err))
	assert.Zero(t, svc.CallCount())
}

func TestListAllFollowsCursors(t *testing.T) {
	client, svc := newClient(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, client.Create(ctx, fmt.Sprintf("/paged/f%d", i), adls.Region([]byte("x")), nil))
	}
	svc.ResetCalls()

	entries, err := client.ListAll(ctx, "/paged", 2, nil)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "/paged/f4", entries[4].FullName)
	assert.Equal(t, 3, svc.CallCount())
	assert.Equal(t, "listAfter=f1&listSize=2", svc.Calls()[1].Query)
}

func TestTrashRoundTrip(t *testing.T) {
	client, svc := newClient(t)
	ctx := context.Background()

	ok, err := client.Delete(ctx, "/data/a.csv", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, svc.Exists("/data/a.csv"))

	trash, err := client.EnumerateDeletedItems(ctx, "a.csv", "", 0)
	require.NoError(t, err)
	require.Equal(t, 1, trash.NumFound)
	assert.Equal(t, "/data/a.csv", trash.Entries[0].OriginalPath)

	require.NoError(t, client.RestoreDeletedItems(ctx, adls.RestoreOptions{Token: trash.Entries[0].RestoreToken(), Type: "file"}))
	data, ok := svc.ReadFile("/data/a.csv")
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))
}

func TestAclRoundTrip(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	require.NoError(t, client.ModifyAclEntries(ctx, "/data/dir", []acl.Entry{
		{Scope: acl.ScopeAccess, Type: acl.TypeUser, Name: "bob", Action: acl.ActionAll},
		{Scope: acl.ScopeDefault, Type: acl.TypeGroup, Name: "ops", Action: acl.ActionRead},
	}))
	status, err := client.GetAclStatus(ctx, "/data/dir", adls.ReprDefault)
	require.NoError(t, err)
	require.Len(t, status.Entries, 2)
	assert.Equal(t, acl.ActionAll, status.Entries[0].Action)
	assert.Equal(t, "alice", status.Owner)

	require.NoError(t, client.RemoveDefaultAcl(ctx, "/data/dir"))
	require.NoError(t, client.RemoveAclEntries(ctx, "/data/dir", []acl.Entry{{Type: acl.TypeUser, Name: "bob"}}))
	status, err = client.GetAclStatus(ctx, "/data/dir", adls.ReprDefault)
	require.NoError(t, err)
	assert.Empty(t, status.Entries)

	err = client.SetAcl(ctx, "/data/dir", nil)
	assert.Equal(t, adls.KindInvalidArgument, adls.KindOf(err))
}

func TestCheckAccessAndPermissions(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	require.NoError(t, client.CheckAccess(ctx, "/data/a.csv", "rw-"))
	require.NoError(t, client.SetPermission(ctx, "/data/a.csv", "0400"))
	err := client.CheckAccess(ctx, "/data/a.csv", "-w-")
	assert.Equal(t, adls.KindRemote, adls.KindOf(err))

	err = client.CheckAccess(ctx, "/data/a.csv", "rwz")
	assert.Equal(t, adls.KindInvalidArgument, adls.KindOf(err))
}

func TestContentSummaryFromTree(t *testing.T) {
	client, _ := newClient(t)
	summary, err := client.GetContentSummary(context.Background(), "/data")
	require.NoError(t, err)
	assert.Equal(t, &adls.ContentSummary{DirectoryCount: 2, FileCount: 2, Length: 10, SpaceConsumed: 10}, summary)
}

type recordingMetrics struct {
	mu    sync.Mutex
	kinds []adls.ErrorKind
	bytes map[string]int
}

func (m *recordingMetrics) ObserveCall(_ adls.Operation, _ adls.Form, kind adls.ErrorKind, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = append(m.kinds, kind)
}

func (m *recordingMetrics) AddBytes(_ adls.Operation, direction string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bytes == nil {
		m.bytes = map[string]int{}
	}
	m.bytes[direction] += n
}

func TestMetricsObserveEveryCall(t *testing.T) {
	rec := &recordingMetrics{}
	client := adls.NewWithTransport(newService(t), adls.WithMetrics(rec))
	ctx := context.Background()

	require.NoError(t, client.Create(ctx, "/m", adls.Region([]byte("12345")), nil))
	_, err := client.Open(ctx, "/m", 0, adls.Region(make([]byte, 5)), "")
	require.NoError(t, err)
	_ = client.SetPermission(ctx, "/m", "bad")

	assert.Equal(t, []adls.ErrorKind{adls.KindNone, adls.KindNone, adls.KindInvalidArgument}, rec.kinds)
	assert.Equal(t, map[string]int{"upload": 5, "download": 5}, rec.bytes)
}
