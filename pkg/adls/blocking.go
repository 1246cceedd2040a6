package adls

import (
	"context"

	"github.com/adlstore/adls_sdk_go/pkg/acl"
)

// Blocking is the thread-blocking form of Client, for callers that already
// run their own worker goroutines. Every method runs the same validation,
// request building and parsing as its context counterpart and sends an
// identical request. No goroutines are started.
type Blocking struct {
	c *Client
}

// background is never canceled; the blocking invoker ignores it when the
// transport implements BlockingTransport.
var background = context.Background()

func (b *Blocking) Create(path string, data ByteRegion, opts *CreateOptions) error {
	return b.c.create(background, blockingInvoker, path, data, opts)
}

func (b *Blocking) Append(path string, offset int64, data ByteRegion, opts *AppendOptions) error {
	return b.c.appendAt(background, blockingInvoker, path, offset, data, opts)
}

func (b *Blocking) ConcurrentAppend(path string, data ByteRegion, autoCreate bool) error {
	return b.c.concurrentAppend(background, blockingInvoker, path, data, autoCreate)
}

func (b *Blocking) Open(path string, offset int64, dest ByteRegion, sessionID string) (int, error) {
	return b.c.open(background, blockingInvoker, path, offset, dest, sessionID)
}

func (b *Blocking) Mkdir(path, permission string) (bool, error) {
	return b.c.mkdir(background, blockingInvoker, path, permission)
}

func (b *Blocking) Delete(path string, recursive bool) (bool, error) {
	return b.c.deletePath(background, blockingInvoker, path, recursive)
}

func (b *Blocking) Rename(path, destination string, overwrite bool) (bool, error) {
	return b.c.rename(background, blockingInvoker, path, destination, overwrite)
}

func (b *Blocking) Concat(path string, sources []string, deleteSourceDirectory bool) error {
	return b.c.concat(background, blockingInvoker, path, sources, deleteSourceDirectory)
}

func (b *Blocking) GetFileStatus(path string, opts *StatusOptions) (*DirectoryEntry, error) {
	return b.c.getFileStatus(background, blockingInvoker, path, opts)
}

func (b *Blocking) ListStatus(path string, opts *ListOptions) ([]DirectoryEntry, error) {
	return b.c.listStatus(background, blockingInvoker, path, opts)
}

func (b *Blocking) GetContentSummary(path string) (*ContentSummary, error) {
	return b.c.getContentSummary(background, blockingInvoker, path)
}

func (b *Blocking) SetTimes(path string, accessTime, modificationTime int64) error {
	return b.c.setTimes(background, blockingInvoker, path, accessTime, modificationTime)
}

// EnumerateDeletedItems panics on a blank hint, like the context form.
func (b *Blocking) EnumerateDeletedItems(hint, listAfter string, numResults int) (*TrashStatus, error) {
	return b.c.enumerateDeletedItems(background, blockingInvoker, hint, listAfter, numResults)
}

func (b *Blocking) RestoreDeletedItems(opts RestoreOptions) error {
	return b.c.restoreDeletedItems(background, blockingInvoker, opts)
}

func (b *Blocking) SetExpiry(path string, option ExpiryOption, expireTime int64) error {
	return b.c.setExpiry(background, blockingInvoker, path, option, expireTime)
}

func (b *Blocking) CheckAccess(path, rwx string) error {
	return b.c.checkAccess(background, blockingInvoker, path, rwx)
}

func (b *Blocking) SetPermission(path, permission string) error {
	return b.c.setPermission(background, blockingInvoker, path, permission)
}

func (b *Blocking) SetOwner(path, user, group string) error {
	return b.c.setOwner(background, blockingInvoker, path, user, group)
}

func (b *Blocking) ModifyAclEntries(path string, entries []acl.Entry) error {
	return b.c.aclEntries(background, blockingInvoker, OpModifyAclEntries, path, entries)
}

func (b *Blocking) ModifyAclEntriesSpec(path, spec string) error {
	return b.c.aclSpec(background, blockingInvoker, OpModifyAclEntries, path, spec)
}

func (b *Blocking) SetAcl(path string, entries []acl.Entry) error {
	return b.c.aclEntries(background, blockingInvoker, OpSetAcl, path, entries)
}

func (b *Blocking) SetAclSpec(path, spec string) error {
	return b.c.aclSpec(background, blockingInvoker, OpSetAcl, path, spec)
}

func (b *Blocking) RemoveAclEntries(path string, entries []acl.Entry) error {
	return b.c.aclEntries(background, blockingInvoker, OpRemoveAclEntries, path, entries)
}

func (b *Blocking) RemoveAclEntriesSpec(path, spec string) error {
	return b.c.aclSpec(background, blockingInvoker, OpRemoveAclEntries, path, spec)
}

func (b *Blocking) RemoveDefaultAcl(path string) error {
	return b.c.aclReset(background, blockingInvoker, OpRemoveDefaultAcl, path)
}

func (b *Blocking) RemoveAcl(path string) error {
	return b.c.aclReset(background, blockingInvoker, OpRemoveAcl, path)
}

func (b *Blocking) GetAclStatus(path string, repr UserGroupRepresentation) (*AclStatus, error) {
	return b.c.getAclStatus(background, blockingInvoker, path, repr)
}
