package adls

import (
	"context"
	"time"
)

// Operation is the wire token naming a service operation.
type Operation string

const (
	OpOpen                  Operation = "OPEN"
	OpGetFileStatus         Operation = "GETFILESTATUS"
	OpListStatus            Operation = "LISTSTATUS"
	OpGetContentSummary     Operation = "GETCONTENTSUMMARY"
	OpGetAclStatus          Operation = "GETACLSTATUS"
	OpCheckAccess           Operation = "CHECKACCESS"
	OpCreate                Operation = "CREATE"
	OpMkdirs                Operation = "MKDIRS"
	OpRename                Operation = "RENAME"
	OpSetOwner              Operation = "SETOWNER"
	OpSetPermission         Operation = "SETPERMISSION"
	OpSetTimes              Operation = "SETTIMES"
	OpModifyAclEntries      Operation = "MODIFYACLENTRIES"
	OpRemoveAclEntries      Operation = "REMOVEACLENTRIES"
	OpRemoveDefaultAcl      Operation = "REMOVEDEFAULTACL"
	OpRemoveAcl             Operation = "REMOVEACL"
	OpSetAcl                Operation = "SETACL"
	OpAppend                Operation = "APPEND"
	OpConcat                Operation = "MSCONCAT"
	OpDelete                Operation = "DELETE"
	OpConcurrentAppend      Operation = "CONCURRENTAPPEND"
	OpSetExpiry             Operation = "SETEXPIRY"
	OpEnumerateDeletedItems Operation = "ENUMERATEDELETEDITEMS"
	OpRestoreDeletedItems   Operation = "RESTOREDELETEDITEMS"
)

// RequestOptions carry per-call settings down to the transport.
type RequestOptions struct {
	// Timeout bounds the whole exchange including transport retries; zero
	// leaves the transport default.
	Timeout time.Duration
	// RequestID correlates the call in service logs; the transport generates
	// one when empty.
	RequestID string
}

// Request is everything a transport needs for one exchange.
type Request struct {
	Op    Operation
	Path  string
	Query *QueryParams
	// Body is the request payload, if any.
	Body ByteRegion
	// ContentType is set for payloads that are not raw file bytes.
	ContentType string
	// Dest receives the response bytes of read style operations. When
	// Dest.Buf is nil the raw body is returned in Response.Body instead.
	Dest    ByteRegion
	Options RequestOptions
}

// Response is the raw outcome of a successful exchange.
type Response struct {
	// Body is the raw response body for structured replies.
	Body []byte
	// N is the number of bytes copied into Request.Dest.
	N          int
	HTTPStatus int
	RequestID  string
}

// Transport performs network exchanges. It owns connection reuse, retries,
// redirects and authentication. A non-2xx reply must be reported as a
// *RemoteError; every other failure as a plain error.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// BlockingTransport is implemented by transports that have a dedicated
// blocking entry point. There is no context on this path, so the transport
// owns req.Options.Timeout. Blocking calls fall back to RoundTrip with a
// background context bounded by that timeout otherwise.
type BlockingTransport interface {
	RoundTripBlocking(req *Request) (*Response, error)
}

// Form names the execution form of a call.
type Form string

const (
	FormContext  Form = "context"
	FormBlocking Form = "blocking"
)

// invoker is the wait capability the shared operation core is parameterised
// over. Neither implementation starts goroutines.
type invoker struct {
	form   Form
	invoke func(ctx context.Context, t Transport, req *Request) (*Response, error)
}

var awaitInvoker = invoker{
	form: FormContext,
	invoke: func(ctx context.Context, t Transport, req *Request) (*Response, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if req.Options.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, req.Options.Timeout)
			defer cancel()
		}
		resp, err := t.RoundTrip(ctx, req)
		if err == nil {
			// A transport that ignores cancellation must not turn a
			// canceled call into a success.
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
		}
		return resp, err
	},
}

var blockingInvoker = invoker{
	form: FormBlocking,
	invoke: func(_ context.Context, t Transport, req *Request) (*Response, error) {
		if bt, ok := t.(BlockingTransport); ok {
			return bt.RoundTripBlocking(req)
		}
		return awaitInvoker.invoke(context.Background(), t, req)
	},
}
