package adls

import (
	"time"

	"github.com/adlstore/adls_sdk_go/pkg/acl"
)

// DirectoryEntryType distinguishes files from directories.
type DirectoryEntryType string

const (
	TypeFile      DirectoryEntryType = "FILE"
	TypeDirectory DirectoryEntryType = "DIRECTORY"
)

// DirectoryEntry is the metadata of one path.
type DirectoryEntry struct {
	// Name is the last path component as reported by the service.
	Name string
	// FullName is the absolute path of the entry.
	FullName          string
	Type              DirectoryEntryType
	Length            int64
	BlockSize         int64
	ReplicationFactor int
	User              string
	Group             string
	Permission        string
	AclBit            bool
	LastAccessTime    time.Time
	LastModifiedTime  time.Time
	// ExpiryTime is zero when the entry never expires.
	ExpiryTime time.Time
}

// AclStatus is a snapshot of the access-control state of a path.
type AclStatus struct {
	Entries    []acl.Entry
	Owner      string
	Group      string
	Permission string
	StickyBit  bool
}

// ContentSummary aggregates a subtree.
type ContentSummary struct {
	DirectoryCount int64
	FileCount      int64
	Length         int64
	SpaceConsumed  int64
}

// TrashEntry is one deleted item that may be restored.
type TrashEntry struct {
	// TrashDirPath doubles as the restore token.
	TrashDirPath string
	OriginalPath string
	Type         DirectoryEntryType
	CreationTime time.Time
}

// RestoreToken returns the token RestoreDeletedItems expects.
func (e TrashEntry) RestoreToken() string {
	return e.TrashDirPath
}

// TrashStatus is one page of deleted-item enumeration.
type TrashStatus struct {
	Entries       []TrashEntry
	NextListAfter string
	// NumFound is derived from Entries, the service does not send it.
	NumFound int
}

// SyncFlag selects how far an append commits.
type SyncFlag string

const (
	// SyncFlagNone omits the parameter and lets the service default apply.
	SyncFlagNone SyncFlag = ""
	// SyncFlagData commits data only.
	SyncFlagData SyncFlag = "DATA"
	// SyncFlagMetadata also makes length and timestamps visible.
	SyncFlagMetadata SyncFlag = "METADATA"
	// SyncFlagClose finalizes the file and releases the lease.
	SyncFlagClose SyncFlag = "CLOSE"
)

func (f SyncFlag) valid() bool {
	switch f {
	case SyncFlagNone, SyncFlagData, SyncFlagMetadata, SyncFlagClose:
		return true
	}
	return false
}

// UserGroupRepresentation selects how owners and groups are reported.
type UserGroupRepresentation int

const (
	// ReprDefault leaves the choice to the service.
	ReprDefault UserGroupRepresentation = iota
	// ReprOID reports object ids.
	ReprOID
	// ReprUPN reports principal names.
	ReprUPN
)

func (r UserGroupRepresentation) tooid() (string, bool) {
	switch r {
	case ReprOID:
		return "true", true
	case ReprUPN:
		return "false", true
	}
	return "", false
}

// SelectionMode controls listing verbosity.
type SelectionMode int

const (
	SelectionStandard SelectionMode = iota
	SelectionMinimal
	SelectionExtended
)

func (m SelectionMode) String() string {
	switch m {
	case SelectionMinimal:
		return "minimal"
	case SelectionExtended:
		return "extended"
	default:
		return "standard"
	}
}

// ExpiryOption names the reference point of SetExpiry's time value.
type ExpiryOption string

const (
	ExpiryNever                  ExpiryOption = "NeverExpire"
	ExpiryRelativeToNow          ExpiryOption = "RelativeToNow"
	ExpiryRelativeToCreationDate ExpiryOption = "RelativeToCreationDate"
	ExpiryAbsolute               ExpiryOption = "Absolute"
)

func (o ExpiryOption) valid() bool {
	switch o {
	case ExpiryNever, ExpiryRelativeToNow, ExpiryRelativeToCreationDate, ExpiryAbsolute:
		return true
	}
	return false
}

// ByteRegion is a view over a caller owned buffer. It never owns Buf.
type ByteRegion struct {
	Buf    []byte
	Offset int
	Count  int
}

// Region returns a region covering all of b.
func Region(b []byte) ByteRegion {
	return ByteRegion{Buf: b, Count: len(b)}
}

// Bytes returns the viewed slice.
func (r ByteRegion) Bytes() []byte {
	if r.Buf == nil {
		return nil
	}
	return r.Buf[r.Offset : r.Offset+r.Count]
}

func (r ByteRegion) valid() bool {
	return r.Offset >= 0 && r.Count >= 0 && r.Offset+r.Count <= len(r.Buf)
}

// CreateOptions are the optional parameters of Create. A nil *CreateOptions
// is equivalent to DefaultCreateOptions().
type CreateOptions struct {
	// Permission is an octal string such as "0750"; empty leaves the default.
	Permission string
	Overwrite  bool
	LeaseID    string
	SessionID  string
	// CreateParent creates missing parent directories.
	CreateParent bool
	SyncFlag     SyncFlag
}

// DefaultCreateOptions returns the options used when Create receives nil.
func DefaultCreateOptions() *CreateOptions {
	return &CreateOptions{CreateParent: true}
}

// AppendOptions are the optional parameters of Append.
type AppendOptions struct {
	LeaseID   string
	SessionID string
	SyncFlag  SyncFlag
}

// StatusOptions are the optional parameters of GetFileStatus.
type StatusOptions struct {
	Repr UserGroupRepresentation
	// ConsistentLength asks the service for the committed length of a file
	// that is still open for append.
	ConsistentLength bool
}

// ListOptions page and shape a directory listing.
type ListOptions struct {
	ListAfter  string
	ListBefore string
	// ListSize caps the page; zero leaves the service default.
	ListSize  int
	Repr      UserGroupRepresentation
	Selection SelectionMode
}

// RestoreOptions identify the deleted item to restore.
type RestoreOptions struct {
	Token       string
	Destination string
	// Type is "file" or "folder".
	Type string
	// Action is e.g. "copy" or "overwrite"; empty leaves the default.
	Action string
}
