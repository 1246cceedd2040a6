package adls

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/adlstore/adls_sdk_go/pkg/acl"
)

// QueryParams is an insertion ordered set of query parameters. Setting an
// existing name replaces its value in place.
type QueryParams struct {
	names  []string
	values map[string]string
}

// NewQueryParams returns an empty parameter set.
func NewQueryParams() *QueryParams {
	return &QueryParams{values: make(map[string]string)}
}

// Set adds or replaces a parameter.
func (q *QueryParams) Set(name, value string) {
	if _, ok := q.values[name]; !ok {
		q.names = append(q.names, name)
	}
	q.values[name] = value
}

// Get returns a parameter value.
func (q *QueryParams) Get(name string) (string, bool) {
	if q == nil {
		return "", false
	}
	v, ok := q.values[name]
	return v, ok
}

// Names returns the parameter names in insertion order.
func (q *QueryParams) Names() []string {
	if q == nil {
		return nil
	}
	return append([]string(nil), q.names...)
}

// Len returns the number of parameters.
func (q *QueryParams) Len() int {
	if q == nil {
		return 0
	}
	return len(q.names)
}

// Encode renders the set as a query string in insertion order.
func (q *QueryParams) Encode() string {
	if q == nil {
		return ""
	}
	var b strings.Builder
	for i, name := range q.names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.values[name]))
	}
	return b.String()
}

// Clone returns an independent copy.
func (q *QueryParams) Clone() *QueryParams {
	out := NewQueryParams()
	if q == nil {
		return out
	}
	for _, name := range q.names {
		out.Set(name, q.values[name])
	}
	return out
}

// Equal reports whether both sets hold the same names, values and order.
func (q *QueryParams) Equal(other *QueryParams) bool {
	return q.Encode() == other.Encode()
}

func (q *QueryParams) setNonEmpty(name, value string) {
	if value != "" {
		q.Set(name, value)
	}
}

func (q *QueryParams) setBool(name string, v bool) {
	q.Set(name, strconv.FormatBool(v))
}

// Octal permissions: an optional sticky digit (0 or 1) followed by one to
// three rwx triads.
var octalPermissionPattern = regexp.MustCompile(`^[01]?[0-7]{1,3}$`)

// IsValidOctalPermission reports whether p is an accepted octal permission.
func IsValidOctalPermission(p string) bool {
	return octalPermissionPattern.MatchString(p)
}

// IsValidRwx reports whether s is exactly three characters from
// {r,-}{w,-}{x,-}.
func IsValidRwx(s string) bool {
	return acl.IsValidAction(s)
}

func validateConcatSources(st *Status, destination string, sources []string) bool {
	if len(sources) == 0 {
		st.invalid("concat: source list is empty")
		return false
	}
	seen := make(map[string]struct{}, len(sources))
	for i, src := range sources {
		if strings.TrimSpace(src) == "" {
			st.invalid("concat: source %d is empty", i)
			return false
		}
		if src == destination {
			st.invalid("concat: source %q equals the destination", src)
			return false
		}
		if _, dup := seen[src]; dup {
			st.invalid("concat: source %q is listed more than once", src)
			return false
		}
		seen[src] = struct{}{}
	}
	return true
}

func checkPermission(st *Status, permission string) bool {
	if permission != "" && !IsValidOctalPermission(permission) {
		st.invalid("invalid octal permission %q", permission)
		return false
	}
	return true
}

func checkSyncFlag(st *Status, flag SyncFlag) bool {
	if !flag.valid() {
		st.invalid("unknown sync flag %q", string(flag))
		return false
	}
	return true
}

func buildMkdirParams(st *Status, permission string) *QueryParams {
	if !checkPermission(st, permission) {
		return nil
	}
	q := NewQueryParams()
	q.setNonEmpty("permission", permission)
	return q
}

func buildCreateParams(st *Status, opts *CreateOptions) *QueryParams {
	if opts == nil {
		opts = DefaultCreateOptions()
	}
	if !checkPermission(st, opts.Permission) || !checkSyncFlag(st, opts.SyncFlag) {
		return nil
	}
	q := NewQueryParams()
	if opts.Overwrite {
		q.Set("overwrite", "true")
	}
	q.setNonEmpty("permission", opts.Permission)
	q.setNonEmpty("leaseid", opts.LeaseID)
	q.setNonEmpty("filesessionid", opts.SessionID)
	if !opts.CreateParent {
		q.Set("CreateParent", "false")
	}
	q.setNonEmpty("syncFlag", string(opts.SyncFlag))
	q.Set("write", "true")
	return q
}

func buildAppendParams(st *Status, offset int64, opts *AppendOptions) *QueryParams {
	if opts == nil {
		opts = &AppendOptions{}
	}
	if offset < 0 {
		st.invalid("append: negative file offset %d", offset)
		return nil
	}
	if !checkSyncFlag(st, opts.SyncFlag) {
		return nil
	}
	q := NewQueryParams()
	q.setNonEmpty("leaseid", opts.LeaseID)
	q.setNonEmpty("filesessionid", opts.SessionID)
	q.Set("offset", strconv.FormatInt(offset, 10))
	q.setNonEmpty("syncFlag", string(opts.SyncFlag))
	q.Set("append", "true")
	return q
}

func buildConcurrentAppendParams(autoCreate bool) *QueryParams {
	q := NewQueryParams()
	if autoCreate {
		q.Set("appendMode", "autocreate")
	}
	return q
}

func buildOpenParams(st *Status, offset int64, length int, sessionID string) *QueryParams {
	if offset < 0 {
		st.invalid("open: negative file offset %d", offset)
		return nil
	}
	if length < 0 {
		st.invalid("open: negative length %d", length)
		return nil
	}
	q := NewQueryParams()
	q.Set("offset", strconv.FormatInt(offset, 10))
	q.Set("length", strconv.Itoa(length))
	q.setNonEmpty("filesessionid", sessionID)
	q.Set("read", "true")
	return q
}

func buildDeleteParams(recursive bool) *QueryParams {
	q := NewQueryParams()
	q.setBool("recursive", recursive)
	return q
}

func buildRenameParams(st *Status, destination string, overwrite bool) *QueryParams {
	if strings.TrimSpace(destination) == "" {
		st.invalid("rename: destination is empty")
		return nil
	}
	q := NewQueryParams()
	q.Set("destination", destination)
	if overwrite {
		q.Set("renameoptions", "overwrite")
	}
	return q
}

func buildConcatParams(st *Status, destination string, sources []string, deleteSourceDirectory bool) *QueryParams {
	if !validateConcatSources(st, destination, sources) {
		return nil
	}
	q := NewQueryParams()
	if deleteSourceDirectory {
		q.Set("deleteSourceDirectory", "true")
	}
	return q
}

func buildStatusParams(opts *StatusOptions) *QueryParams {
	q := NewQueryParams()
	if opts == nil {
		return q
	}
	if v, ok := opts.Repr.tooid(); ok {
		q.Set("tooid", v)
	}
	if opts.ConsistentLength {
		q.Set("getconsistentlength", "true")
	}
	return q
}

func buildListParams(st *Status, opts *ListOptions) *QueryParams {
	q := NewQueryParams()
	if opts == nil {
		return q
	}
	if opts.ListSize < 0 {
		st.invalid("list: negative page size %d", opts.ListSize)
		return nil
	}
	q.setNonEmpty("listAfter", opts.ListAfter)
	q.setNonEmpty("listBefore", opts.ListBefore)
	if opts.ListSize > 0 {
		q.Set("listSize", strconv.Itoa(opts.ListSize))
	}
	if opts.Selection != SelectionMinimal {
		if v, ok := opts.Repr.tooid(); ok {
			q.Set("tooid", v)
		}
	}
	if opts.Selection != SelectionStandard {
		q.Set("select", opts.Selection.String())
	}
	return q
}

// maxDeletedItemsPage is the largest page the service accepts for deleted
// item enumeration.
const maxDeletedItemsPage = 4000

// buildEnumerateDeletedItemsParams panics on a blank hint: omitting it is a
// caller bug, not an operational failure.
func buildEnumerateDeletedItemsParams(hint, listAfter string, numResults int) *QueryParams {
	if strings.TrimSpace(hint) == "" {
		panic("adls: EnumerateDeletedItems requires a non-blank hint")
	}
	if numResults <= 0 || numResults > maxDeletedItemsPage {
		numResults = maxDeletedItemsPage
	}
	q := NewQueryParams()
	q.Set("hint", hint)
	q.setNonEmpty("listAfter", listAfter)
	q.Set("listSize", strconv.Itoa(numResults))
	return q
}

func buildRestoreParams(opts RestoreOptions) *QueryParams {
	q := NewQueryParams()
	q.setNonEmpty("restoreToken", opts.Token)
	q.setNonEmpty("restoreDestination", opts.Destination)
	q.setNonEmpty("type", opts.Type)
	q.setNonEmpty("restoreAction", opts.Action)
	return q
}

func buildSetExpiryParams(st *Status, option ExpiryOption, expireTime int64) *QueryParams {
	if !option.valid() {
		st.invalid("set expiry: unknown expiry option %q", string(option))
		return nil
	}
	if option != ExpiryNever && expireTime < 0 {
		st.invalid("set expiry: negative expire time %d", expireTime)
		return nil
	}
	q := NewQueryParams()
	q.Set("expiryOption", string(option))
	if option != ExpiryNever {
		q.Set("expireTime", strconv.FormatInt(expireTime, 10))
	}
	return q
}

func buildCheckAccessParams(st *Status, rwx string) *QueryParams {
	if !IsValidRwx(rwx) {
		st.invalid("check access: invalid rwx string %q", rwx)
		return nil
	}
	q := NewQueryParams()
	q.Set("fsaction", rwx)
	return q
}

func buildSetPermissionParams(st *Status, permission string) *QueryParams {
	if !IsValidOctalPermission(permission) {
		st.invalid("set permission: invalid octal permission %q", permission)
		return nil
	}
	q := NewQueryParams()
	q.Set("permission", permission)
	return q
}

func buildSetOwnerParams(st *Status, user, group string) *QueryParams {
	user, group = strings.TrimSpace(user), strings.TrimSpace(group)
	if user == "" && group == "" {
		st.invalid("set owner: user and group are both empty")
		return nil
	}
	q := NewQueryParams()
	q.setNonEmpty("owner", user)
	q.setNonEmpty("group", group)
	return q
}

func buildAclSpecParams(st *Status, spec string) *QueryParams {
	if strings.TrimSpace(spec) == "" {
		st.invalid("acl spec is empty")
		return nil
	}
	q := NewQueryParams()
	q.Set("aclspec", spec)
	return q
}

func buildSetTimesParams(st *Status, accessTime, modificationTime int64) *QueryParams {
	if accessTime < -1 || modificationTime < -1 {
		st.invalid("set times: times must be -1 or non-negative")
		return nil
	}
	q := NewQueryParams()
	if accessTime >= 0 {
		q.Set("accesstime", strconv.FormatInt(accessTime, 10))
	}
	if modificationTime >= 0 {
		q.Set("modificationtime", strconv.FormatInt(modificationTime, 10))
	}
	return q
}
