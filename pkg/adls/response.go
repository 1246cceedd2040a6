package adls

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/adlstore/adls_sdk_go/internal/webhdfs"
)

// Replies come in two shapes. Entries and listings are nested enough that
// encoding/json earns its allocation; the flat wrapper-keyed replies
// (acknowledgements, ACL status, content summary) are walked token by token
// without building an intermediate document.

// --- structured decode ---

// flexString accepts a JSON string or number. Some service versions send
// permissions as numbers.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

type fileStatusWire struct {
	Name             *string    `json:"name"`
	PathSuffix       *string    `json:"pathSuffix"`
	Type             string     `json:"type"`
	Length           int64      `json:"length"`
	BlockSize        int64      `json:"blockSize"`
	AccessTime       int64      `json:"accessTime"`
	ModificationTime int64      `json:"modificationTime"`
	Replication      int        `json:"replication"`
	Permission       flexString `json:"permission"`
	Owner            string     `json:"owner"`
	Group            string     `json:"group"`
	AclBit           bool       `json:"aclBit"`
	ExpirationTime   int64      `json:"msExpirationTime"`
}

// returnedName is the relative name sent by the service, nil when absent.
func (w *fileStatusWire) returnedName() *string {
	if w.Name != nil {
		return w.Name
	}
	return w.PathSuffix
}

func (w *fileStatusWire) entry() DirectoryEntry {
	return DirectoryEntry{
		Type:              DirectoryEntryType(strings.ToUpper(w.Type)),
		Length:            w.Length,
		BlockSize:         w.BlockSize,
		ReplicationFactor: w.Replication,
		User:              w.Owner,
		Group:             w.Group,
		Permission:        string(w.Permission),
		AclBit:            w.AclBit,
		LastAccessTime:    millis(w.AccessTime),
		LastModifiedTime:  millis(w.ModificationTime),
		ExpiryTime:        millis(w.ExpirationTime),
	}
}

func millis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func structuredFault(err error) *ParseFault {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, webhdfs.ErrEmptyBody):
		return &ParseFault{Category: "empty-body", Err: err}
	case errors.Is(err, webhdfs.ErrMissingMember):
		return &ParseFault{Category: "missing-member", Err: err}
	case errors.As(err, &syntaxErr):
		return &ParseFault{Category: "syntax", Err: err}
	case errors.As(err, &typeErr):
		return &ParseFault{Category: "type-mismatch", Err: err}
	default:
		return &ParseFault{Category: "decode", Err: err}
	}
}

func parseFileStatus(st *Status, path string, body []byte) *DirectoryEntry {
	var wire *fileStatusWire
	if err := webhdfs.DecodeMember(body, "FileStatus", &wire); err != nil {
		st.fail(KindParse, structuredFault(err))
		return nil
	}
	if wire == nil {
		st.fail(KindParse, &ParseFault{Category: "missing-member", Err: errors.New("FileStatus is null")})
		return nil
	}
	e := wire.entry()
	nameSingleEntry(&e, path, wire.returnedName())
	return &e
}

func parseListStatus(st *Status, path string, body []byte) []DirectoryEntry {
	var wire struct {
		FileStatus []fileStatusWire `json:"FileStatus"`
	}
	if err := webhdfs.DecodeMember(body, "FileStatuses", &wire); err != nil {
		st.fail(KindParse, structuredFault(err))
		return nil
	}
	prefix := listingPrefix(path)
	entries := make([]DirectoryEntry, 0, len(wire.FileStatus))
	for i := range wire.FileStatus {
		w := &wire.FileStatus[i]
		e := w.entry()
		nameListedEntry(&e, prefix, w.returnedName())
		entries = append(entries, e)
	}
	return entries
}

func parseTrashStatus(st *Status, body []byte) *TrashStatus {
	var wire struct {
		Entries []struct {
			TrashDirPath string `json:"trashDirPath"`
			OriginalPath string `json:"originalPath"`
			Type         string `json:"type"`
			CreationTime int64  `json:"creationTime"`
		} `json:"trashDirEntry"`
		NextListAfter string `json:"nextListAfter"`
	}
	if err := webhdfs.DecodeMember(body, "trashDir", &wire); err != nil {
		st.fail(KindParse, structuredFault(err))
		return nil
	}
	ts := &TrashStatus{
		Entries:       make([]TrashEntry, 0, len(wire.Entries)),
		NextListAfter: wire.NextListAfter,
	}
	for _, w := range wire.Entries {
		ts.Entries = append(ts.Entries, TrashEntry{
			TrashDirPath: w.TrashDirPath,
			OriginalPath: w.OriginalPath,
			Type:         DirectoryEntryType(strings.ToUpper(w.Type)),
			CreationTime: millis(w.CreationTime),
		})
	}
	ts.NumFound = len(ts.Entries)
	return ts
}

// --- streaming walk ---

// walker is a pull cursor over one reply. The first fault stops the walk.
type walker struct {
	iter  *jsoniter.Iterator
	fault *ParseFault
}

func newWalker(body []byte) *walker {
	return &walker{iter: jsoniter.ConfigDefault.BorrowIterator(body)}
}

func (w *walker) release() {
	jsoniter.ConfigDefault.ReturnIterator(w.iter)
}

func (w *walker) failf(category, format string, args ...any) {
	if w.fault == nil {
		w.fault = &ParseFault{Category: category, Err: errors.Errorf(format, args...)}
	}
}

func (w *walker) ok() bool {
	if w.fault != nil {
		return false
	}
	if w.iter.Error != nil {
		w.fault = &ParseFault{Category: "syntax", Err: w.iter.Error}
		return false
	}
	return true
}

func (w *walker) expect(want jsoniter.ValueType, what string) bool {
	if !w.ok() {
		return false
	}
	if got := w.iter.WhatIsNext(); got != want {
		w.failf("unexpected-token", "%s: expected %s, found %s", what, valueTypeName(want), valueTypeName(got))
		return false
	}
	return true
}

// object visits every member of the next object. fn must consume the value
// of each field it is handed.
func (w *walker) object(what string, fn func(field string)) {
	if !w.expect(jsoniter.ObjectValue, what) {
		return
	}
	w.iter.ReadObjectCB(func(_ *jsoniter.Iterator, field string) bool {
		fn(field)
		return w.ok()
	})
	w.ok()
}

func (w *walker) skip() {
	w.iter.Skip()
}

func (w *walker) readBool(what string) bool {
	if !w.expect(jsoniter.BoolValue, what) {
		return false
	}
	return w.iter.ReadBool()
}

func (w *walker) readString(what string) string {
	if !w.ok() {
		return ""
	}
	switch w.iter.WhatIsNext() {
	case jsoniter.StringValue:
		return w.iter.ReadString()
	case jsoniter.NumberValue:
		return string(w.iter.ReadNumber())
	case jsoniter.NilValue:
		w.iter.ReadNil()
		return ""
	default:
		w.failf("unexpected-token", "%s: expected string", what)
		return ""
	}
}

func (w *walker) readInt64(what string) int64 {
	if !w.expect(jsoniter.NumberValue, what) {
		return 0
	}
	return w.iter.ReadInt64()
}

func (w *walker) array(what string, fn func()) {
	if !w.expect(jsoniter.ArrayValue, what) {
		return
	}
	for w.iter.ReadArray() {
		fn()
		if !w.ok() {
			return
		}
	}
	w.ok()
}

// member walks the top level object and hands the value of key to fn.
// Sibling members are skipped. A missing key is a fault, and so is anything
// after the object. A repeated key is handed to fn again so the last one
// wins, as with the structured decode; fn must overwrite, not accumulate.
func (w *walker) member(key string, fn func()) {
	found := false
	w.object("response", func(field string) {
		if field == key {
			found = true
			fn()
			return
		}
		w.skip()
	})
	if w.fault == nil && !found {
		w.failf("missing-member", "response has no %q member", key)
	}
	w.end()
}

// end faults unless only whitespace remains.
func (w *walker) end() {
	if !w.ok() {
		return
	}
	if next := w.iter.WhatIsNext(); next == jsoniter.InvalidValue && errors.Is(w.iter.Error, io.EOF) {
		w.iter.Error = nil
		return
	}
	w.failf("trailing-data", "unexpected data after the response object")
}

func valueTypeName(t jsoniter.ValueType) string {
	switch t {
	case jsoniter.StringValue:
		return "string"
	case jsoniter.NumberValue:
		return "number"
	case jsoniter.NilValue:
		return "null"
	case jsoniter.BoolValue:
		return "boolean"
	case jsoniter.ArrayValue:
		return "array"
	case jsoniter.ObjectValue:
		return "object"
	default:
		return "end of input"
	}
}

// parseBoolean decodes {"boolean": true|false}.
func parseBoolean(st *Status, body []byte) bool {
	w := newWalker(body)
	defer w.release()

	var value bool
	w.member("boolean", func() {
		value = w.readBool("boolean")
	})
	if w.fault != nil {
		st.fail(KindParse, w.fault)
		return false
	}
	return value
}

// parseAclStatus decodes {"AclStatus": {...}}; entries are decoded through
// the ACL grammar codec.
func parseAclStatus(st *Status, body []byte, codec AclCodec) *AclStatus {
	w := newWalker(body)
	defer w.release()

	out := &AclStatus{}
	w.member("AclStatus", func() {
		*out = AclStatus{}
		w.object("AclStatus", func(field string) {
			switch field {
			case "entries":
				w.array("entries", func() {
					raw := w.readString("entries[]")
					if w.fault != nil {
						return
					}
					entry, err := codec.ParseEntry(raw)
					if err != nil {
						w.fault = &ParseFault{Category: "acl-entry", Err: err}
						return
					}
					out.Entries = append(out.Entries, entry)
				})
			case "owner":
				out.Owner = w.readString("owner")
			case "group":
				out.Group = w.readString("group")
			case "permission":
				out.Permission = w.readString("permission")
			case "stickyBit":
				out.StickyBit = w.readBool("stickyBit")
			default:
				w.skip()
			}
		})
	})
	if w.fault != nil {
		st.fail(KindParse, w.fault)
		return nil
	}
	return out
}

// parseContentSummary decodes {"ContentSummary": {...}}.
func parseContentSummary(st *Status, body []byte) *ContentSummary {
	w := newWalker(body)
	defer w.release()

	out := &ContentSummary{}
	w.member("ContentSummary", func() {
		*out = ContentSummary{}
		w.object("ContentSummary", func(field string) {
			switch field {
			case "directoryCount":
				out.DirectoryCount = w.readInt64(field)
			case "fileCount":
				out.FileCount = w.readInt64(field)
			case "length":
				out.Length = w.readInt64(field)
			case "spaceConsumed":
				out.SpaceConsumed = w.readInt64(field)
			default:
				w.skip()
			}
		})
	})
	if w.fault != nil {
		st.fail(KindParse, w.fault)
		return nil
	}
	return out
}
