package adls

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/adlstore/adls_sdk_go/pkg/acl"
)

// rootPath is the path trash operations are issued against.
const rootPath = "/"

// defaultListPage is the page size ListAll uses when given none.
const defaultListPage = 4000

// NewLeaseID returns a fresh lease identifier for Create and Append.
func NewLeaseID() string {
	return uuid.NewString()
}

// NewSessionID returns a fresh file session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

func ackParser(st *Status, resp *Response) bool {
	return parseBoolean(st, resp.Body)
}

func queryOnly(q *QueryParams) *call {
	if q == nil {
		return nil
	}
	return &call{query: q}
}

// --- writes ---

func (c *Client) create(ctx context.Context, inv invoker, path string, data ByteRegion, opts *CreateOptions) error {
	_, err := run[struct{}](ctx, c, inv, OpCreate, path, func(st *Status) *call {
		q := buildCreateParams(st, opts)
		if q == nil || !checkRegion(st, "create", data) {
			return nil
		}
		return &call{query: q, body: data}
	}, nil)
	return err
}

func (c *Client) appendAt(ctx context.Context, inv invoker, path string, offset int64, data ByteRegion, opts *AppendOptions) error {
	_, err := run[struct{}](ctx, c, inv, OpAppend, path, func(st *Status) *call {
		q := buildAppendParams(st, offset, opts)
		if q == nil || !checkRegion(st, "append", data) {
			return nil
		}
		return &call{query: q, body: data}
	}, nil)
	return err
}

func (c *Client) concurrentAppend(ctx context.Context, inv invoker, path string, data ByteRegion, autoCreate bool) error {
	_, err := run[struct{}](ctx, c, inv, OpConcurrentAppend, path, func(st *Status) *call {
		if !checkRegion(st, "concurrent append", data) {
			return nil
		}
		return &call{query: buildConcurrentAppendParams(autoCreate), body: data}
	}, nil)
	return err
}

func (c *Client) open(ctx context.Context, inv invoker, path string, offset int64, dest ByteRegion, sessionID string) (int, error) {
	return run(ctx, c, inv, OpOpen, path, func(st *Status) *call {
		q := buildOpenParams(st, offset, dest.Count, sessionID)
		if q == nil || !checkRegion(st, "open", dest) {
			return nil
		}
		if dest.Buf == nil {
			// Never let the transport fall back to a structured body.
			dest.Buf = []byte{}
		}
		return &call{query: q, dest: dest}
	}, func(_ *Status, resp *Response) int {
		return resp.N
	})
}

func (c *Client) concat(ctx context.Context, inv invoker, path string, sources []string, deleteSourceDirectory bool) error {
	_, err := run[struct{}](ctx, c, inv, OpConcat, path, func(st *Status) *call {
		q := buildConcatParams(st, path, sources, deleteSourceDirectory)
		if q == nil {
			return nil
		}
		payload, err := encodeJSON(map[string][]string{"sources": sources})
		if err != nil {
			st.fail(KindInvalidArgument, errors.Wrap(err, "encode concat sources"))
			return nil
		}
		return &call{query: q, body: Region(payload), contentType: "application/json"}
	}, nil)
	return err
}

// --- namespace ---

func (c *Client) mkdir(ctx context.Context, inv invoker, path, permission string) (bool, error) {
	return run(ctx, c, inv, OpMkdirs, path, func(st *Status) *call {
		return queryOnly(buildMkdirParams(st, permission))
	}, ackParser)
}

func (c *Client) deletePath(ctx context.Context, inv invoker, path string, recursive bool) (bool, error) {
	return run(ctx, c, inv, OpDelete, path, func(*Status) *call {
		return queryOnly(buildDeleteParams(recursive))
	}, ackParser)
}

func (c *Client) rename(ctx context.Context, inv invoker, path, destination string, overwrite bool) (bool, error) {
	return run(ctx, c, inv, OpRename, path, func(st *Status) *call {
		return queryOnly(buildRenameParams(st, destination, overwrite))
	}, ackParser)
}

func (c *Client) getFileStatus(ctx context.Context, inv invoker, path string, opts *StatusOptions) (*DirectoryEntry, error) {
	return run(ctx, c, inv, OpGetFileStatus, path, func(*Status) *call {
		return queryOnly(buildStatusParams(opts))
	}, func(st *Status, resp *Response) *DirectoryEntry {
		return parseFileStatus(st, path, resp.Body)
	})
}

func (c *Client) listStatus(ctx context.Context, inv invoker, path string, opts *ListOptions) ([]DirectoryEntry, error) {
	return run(ctx, c, inv, OpListStatus, path, func(st *Status) *call {
		return queryOnly(buildListParams(st, opts))
	}, func(st *Status, resp *Response) []DirectoryEntry {
		return parseListStatus(st, path, resp.Body)
	})
}

func (c *Client) getContentSummary(ctx context.Context, inv invoker, path string) (*ContentSummary, error) {
	return run(ctx, c, inv, OpGetContentSummary, path, func(*Status) *call {
		return queryOnly(NewQueryParams())
	}, func(st *Status, resp *Response) *ContentSummary {
		return parseContentSummary(st, resp.Body)
	})
}

func (c *Client) setTimes(ctx context.Context, inv invoker, path string, accessTime, modificationTime int64) error {
	_, err := run[struct{}](ctx, c, inv, OpSetTimes, path, func(st *Status) *call {
		return queryOnly(buildSetTimesParams(st, accessTime, modificationTime))
	}, nil)
	return err
}

// --- trash ---

func (c *Client) enumerateDeletedItems(ctx context.Context, inv invoker, hint, listAfter string, numResults int) (*TrashStatus, error) {
	return run(ctx, c, inv, OpEnumerateDeletedItems, rootPath, func(*Status) *call {
		return queryOnly(buildEnumerateDeletedItemsParams(hint, listAfter, numResults))
	}, func(st *Status, resp *Response) *TrashStatus {
		return parseTrashStatus(st, resp.Body)
	})
}

func (c *Client) restoreDeletedItems(ctx context.Context, inv invoker, opts RestoreOptions) error {
	_, err := run[struct{}](ctx, c, inv, OpRestoreDeletedItems, rootPath, func(*Status) *call {
		return queryOnly(buildRestoreParams(opts))
	}, nil)
	return err
}

// --- metadata and access control ---

func (c *Client) setExpiry(ctx context.Context, inv invoker, path string, option ExpiryOption, expireTime int64) error {
	_, err := run[struct{}](ctx, c, inv, OpSetExpiry, path, func(st *Status) *call {
		return queryOnly(buildSetExpiryParams(st, option, expireTime))
	}, nil)
	return err
}

func (c *Client) checkAccess(ctx context.Context, inv invoker, path, rwx string) error {
	_, err := run[struct{}](ctx, c, inv, OpCheckAccess, path, func(st *Status) *call {
		return queryOnly(buildCheckAccessParams(st, rwx))
	}, nil)
	return err
}

func (c *Client) setPermission(ctx context.Context, inv invoker, path, permission string) error {
	_, err := run[struct{}](ctx, c, inv, OpSetPermission, path, func(st *Status) *call {
		return queryOnly(buildSetPermissionParams(st, permission))
	}, nil)
	return err
}

func (c *Client) setOwner(ctx context.Context, inv invoker, path, user, group string) error {
	_, err := run[struct{}](ctx, c, inv, OpSetOwner, path, func(st *Status) *call {
		return queryOnly(buildSetOwnerParams(st, user, group))
	}, nil)
	return err
}

// aclSpec sends a serialized ACL specification for one of the ACL
// mutations.
func (c *Client) aclSpec(ctx context.Context, inv invoker, op Operation, path, spec string) error {
	_, err := run[struct{}](ctx, c, inv, op, path, func(st *Status) *call {
		return queryOnly(buildAclSpecParams(st, spec))
	}, nil)
	return err
}

func (c *Client) aclEntries(ctx context.Context, inv invoker, op Operation, path string, entries []acl.Entry) error {
	return c.aclSpec(ctx, inv, op, path, c.codec.Serialize(entries, op == OpRemoveAclEntries))
}

func (c *Client) aclReset(ctx context.Context, inv invoker, op Operation, path string) error {
	_, err := run[struct{}](ctx, c, inv, op, path, func(*Status) *call {
		return queryOnly(NewQueryParams())
	}, nil)
	return err
}

func (c *Client) getAclStatus(ctx context.Context, inv invoker, path string, repr UserGroupRepresentation) (*AclStatus, error) {
	return run(ctx, c, inv, OpGetAclStatus, path, func(*Status) *call {
		return queryOnly(buildStatusParams(&StatusOptions{Repr: repr}))
	}, func(st *Status, resp *Response) *AclStatus {
		return parseAclStatus(st, resp.Body, c.codec)
	})
}

// --- context form ---

// Create writes data to a new file at path. A nil opts behaves like
// DefaultCreateOptions().
func (c *Client) Create(ctx context.Context, path string, data ByteRegion, opts *CreateOptions) error {
	return c.create(ctx, awaitInvoker, path, data, opts)
}

// Append writes data at offset. Racing writers with different lease ids get
// server defined results.
func (c *Client) Append(ctx context.Context, path string, offset int64, data ByteRegion, opts *AppendOptions) error {
	return c.appendAt(ctx, awaitInvoker, path, offset, data, opts)
}

// ConcurrentAppend appends data at an offset chosen by the service, so any
// number of writers may target one file without coordinating. autoCreate
// creates the file when it does not exist.
func (c *Client) ConcurrentAppend(ctx context.Context, path string, data ByteRegion, autoCreate bool) error {
	return c.concurrentAppend(ctx, awaitInvoker, path, data, autoCreate)
}

// Open reads up to dest.Count bytes starting at offset into dest and returns
// the number of bytes copied.
func (c *Client) Open(ctx context.Context, path string, offset int64, dest ByteRegion, sessionID string) (int, error) {
	return c.open(ctx, awaitInvoker, path, offset, dest, sessionID)
}

// Mkdir creates path and any missing parents.
func (c *Client) Mkdir(ctx context.Context, path, permission string) (bool, error) {
	return c.mkdir(ctx, awaitInvoker, path, permission)
}

func (c *Client) Delete(ctx context.Context, path string, recursive bool) (bool, error) {
	return c.deletePath(ctx, awaitInvoker, path, recursive)
}

func (c *Client) Rename(ctx context.Context, path, destination string, overwrite bool) (bool, error) {
	return c.rename(ctx, awaitInvoker, path, destination, overwrite)
}

// Concat appends sources, in order, to the file at path. Invalid source
// lists are rejected before anything is sent.
func (c *Client) Concat(ctx context.Context, path string, sources []string, deleteSourceDirectory bool) error {
	return c.concat(ctx, awaitInvoker, path, sources, deleteSourceDirectory)
}

func (c *Client) GetFileStatus(ctx context.Context, path string, opts *StatusOptions) (*DirectoryEntry, error) {
	return c.getFileStatus(ctx, awaitInvoker, path, opts)
}

// ListStatus returns one page of the children of path.
func (c *Client) ListStatus(ctx context.Context, path string, opts *ListOptions) ([]DirectoryEntry, error) {
	return c.listStatus(ctx, awaitInvoker, path, opts)
}

// ListAll pages through every child of path, pageSize entries at a time.
// opts.ListAfter, when set, is the starting cursor; opts.ListSize is ignored.
func (c *Client) ListAll(ctx context.Context, path string, pageSize int, opts *ListOptions) ([]DirectoryEntry, error) {
	if pageSize <= 0 {
		pageSize = defaultListPage
	}
	page := ListOptions{}
	if opts != nil {
		page = *opts
	}
	page.ListSize = pageSize

	var all []DirectoryEntry
	for {
		entries, err := c.ListStatus(ctx, path, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
		if len(entries) < pageSize {
			return all, nil
		}
		next := entries[len(entries)-1].Name
		if next == "" || next == page.ListAfter {
			return all, nil
		}
		page.ListAfter = next
	}
}

func (c *Client) GetContentSummary(ctx context.Context, path string) (*ContentSummary, error) {
	return c.getContentSummary(ctx, awaitInvoker, path)
}

// SetTimes sets access and modification times in epoch milliseconds; -1
// leaves a time unchanged.
func (c *Client) SetTimes(ctx context.Context, path string, accessTime, modificationTime int64) error {
	return c.setTimes(ctx, awaitInvoker, path, accessTime, modificationTime)
}

// EnumerateDeletedItems lists trashed items matching hint. numResults is
// clamped to (0, 4000]. A blank hint panics.
func (c *Client) EnumerateDeletedItems(ctx context.Context, hint, listAfter string, numResults int) (*TrashStatus, error) {
	return c.enumerateDeletedItems(ctx, awaitInvoker, hint, listAfter, numResults)
}

func (c *Client) RestoreDeletedItems(ctx context.Context, opts RestoreOptions) error {
	return c.restoreDeletedItems(ctx, awaitInvoker, opts)
}

func (c *Client) SetExpiry(ctx context.Context, path string, option ExpiryOption, expireTime int64) error {
	return c.setExpiry(ctx, awaitInvoker, path, option, expireTime)
}

// CheckAccess succeeds when the caller holds the rwx permissions on path.
func (c *Client) CheckAccess(ctx context.Context, path, rwx string) error {
	return c.checkAccess(ctx, awaitInvoker, path, rwx)
}

func (c *Client) SetPermission(ctx context.Context, path, permission string) error {
	return c.setPermission(ctx, awaitInvoker, path, permission)
}

// SetOwner changes user, group or both; blank values are left unchanged.
func (c *Client) SetOwner(ctx context.Context, path, user, group string) error {
	return c.setOwner(ctx, awaitInvoker, path, user, group)
}

func (c *Client) ModifyAclEntries(ctx context.Context, path string, entries []acl.Entry) error {
	return c.aclEntries(ctx, awaitInvoker, OpModifyAclEntries, path, entries)
}

// ModifyAclEntriesSpec is ModifyAclEntries with an already serialized spec.
func (c *Client) ModifyAclEntriesSpec(ctx context.Context, path, spec string) error {
	return c.aclSpec(ctx, awaitInvoker, OpModifyAclEntries, path, spec)
}

func (c *Client) SetAcl(ctx context.Context, path string, entries []acl.Entry) error {
	return c.aclEntries(ctx, awaitInvoker, OpSetAcl, path, entries)
}

func (c *Client) SetAclSpec(ctx context.Context, path, spec string) error {
	return c.aclSpec(ctx, awaitInvoker, OpSetAcl, path, spec)
}

// RemoveAclEntries removes the named entries; permissions in entries are
// not sent.
func (c *Client) RemoveAclEntries(ctx context.Context, path string, entries []acl.Entry) error {
	return c.aclEntries(ctx, awaitInvoker, OpRemoveAclEntries, path, entries)
}

func (c *Client) RemoveAclEntriesSpec(ctx context.Context, path, spec string) error {
	return c.aclSpec(ctx, awaitInvoker, OpRemoveAclEntries, path, spec)
}

func (c *Client) RemoveDefaultAcl(ctx context.Context, path string) error {
	return c.aclReset(ctx, awaitInvoker, OpRemoveDefaultAcl, path)
}

func (c *Client) RemoveAcl(ctx context.Context, path string) error {
	return c.aclReset(ctx, awaitInvoker, OpRemoveAcl, path)
}

func (c *Client) GetAclStatus(ctx context.Context, path string, repr UserGroupRepresentation) (*AclStatus, error) {
	return c.getAclStatus(ctx, awaitInvoker, path, repr)
}
