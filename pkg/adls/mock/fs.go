package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	pathpkg "path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adlstore/adls_sdk_go/pkg/acl"
	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

const (
	defaultFilePermission = "644"
	defaultDirPermission  = "755"
	blockSize             = 256 << 20
	trashRoot             = "/$Trash"
)

type node struct {
	dir        bool
	data       []byte
	permission string
	owner      string
	group      string
	acl        []acl.Entry
	ctime      time.Time
	atime      time.Time
	mtime      time.Time
	expiry     time.Time
}

type trashItem struct {
	token    string
	original string
	dir      bool
	deleted  time.Time
	// nodes holds the deleted subtree keyed by path relative to original;
	// "" is the item itself.
	nodes map[string]*node
}

// result is the reply to one exchange: a JSON document or raw file bytes.
type result struct {
	status int
	body   []byte
	data   []byte
}

func reply(v any) (result, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return result{}, err
	}
	return result{status: http.StatusOK, body: body}, nil
}

func ack(v bool) (result, error) {
	return reply(map[string]bool{"boolean": v})
}

func empty(status int) (result, error) {
	return result{status: status}, nil
}

func remote(status int, exception, format string, args ...any) *adls.RemoteError {
	return &adls.RemoteError{
		HTTPStatus:    status,
		Exception:     exception,
		Message:       fmt.Sprintf(format, args...),
		JavaClassName: "org.apache.hadoop.ipc." + exception,
	}
}

func notFound(path string) *adls.RemoteError {
	return remote(http.StatusNotFound, "FileNotFoundException", "File/Folder does not exist: %s", path)
}

func badRequest(format string, args ...any) *adls.RemoteError {
	return remote(http.StatusBadRequest, "IllegalArgumentException", format, args...)
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return pathpkg.Clean(p)
}

func isUnder(p, root string) bool {
	if root == "/" {
		return p != "/"
	}
	return strings.HasPrefix(p, root+"/")
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func queryBool(q *adls.QueryParams, name string) bool {
	v, _ := q.Get(name)
	return strings.EqualFold(v, "true")
}

func queryInt(q *adls.QueryParams, name string, def int64) (int64, error) {
	v, ok := q.Get(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, v)
	}
	return n, nil
}

// serve applies one request to the tree. Callers hold s.mu.
func (s *Service) serve(op adls.Operation, p string, q *adls.QueryParams, body []byte) (result, error) {
	p = normalizePath(p)
	switch op {
	case adls.OpCreate:
		return s.create(p, q, body)
	case adls.OpAppend:
		return s.appendAt(p, q, body)
	case adls.OpConcurrentAppend:
		return s.concurrentAppend(p, q, body)
	case adls.OpOpen:
		return s.open(p, q)
	case adls.OpMkdirs:
		return s.mkdirs(p, q)
	case adls.OpDelete:
		return s.deletePath(p, q)
	case adls.OpRename:
		return s.rename(p, q)
	case adls.OpConcat:
		return s.concat(p, q, body)
	case adls.OpGetFileStatus:
		return s.fileStatus(p, q)
	case adls.OpListStatus:
		return s.listStatus(p, q)
	case adls.OpGetContentSummary:
		return s.contentSummary(p)
	case adls.OpGetAclStatus:
		return s.aclStatus(p, q)
	case adls.OpCheckAccess:
		return s.checkAccess(p, q)
	case adls.OpSetOwner:
		return s.setOwner(p, q)
	case adls.OpSetPermission:
		return s.setPermission(p, q)
	case adls.OpSetTimes:
		return s.setTimes(p, q)
	case adls.OpSetExpiry:
		return s.setExpiry(p, q)
	case adls.OpModifyAclEntries, adls.OpSetAcl, adls.OpRemoveAclEntries, adls.OpRemoveDefaultAcl, adls.OpRemoveAcl:
		return s.updateAcl(op, p, q)
	case adls.OpEnumerateDeletedItems:
		return s.enumerateDeleted(q)
	case adls.OpRestoreDeletedItems:
		return s.restoreDeleted(q)
	default:
		return result{}, badRequest("unsupported operation %q", op)
	}
}

func (s *Service) lookup(p string) (*node, error) {
	n, ok := s.nodes[p]
	if !ok {
		return nil, notFound(p)
	}
	return n, nil
}

func (s *Service) lookupFile(p string) (*node, error) {
	n, err := s.lookup(p)
	if err != nil {
		return nil, err
	}
	if n.dir {
		return nil, remote(http.StatusBadRequest, "FileNotFoundException", "%s is a directory", p)
	}
	return n, nil
}

func (s *Service) newNode(dir bool, permission string) *node {
	now := s.now()
	if permission == "" {
		permission = defaultFilePermission
		if dir {
			permission = defaultDirPermission
		}
	}
	return &node{
		dir:        dir,
		permission: permission,
		owner:      s.owner,
		group:      s.group,
		ctime:      now,
		atime:      now,
		mtime:      now,
	}
}

// mkdirAll creates p and its missing ancestors.
func (s *Service) mkdirAll(p, permission string) error {
	if n, ok := s.nodes[p]; ok {
		if !n.dir {
			return remote(http.StatusForbidden, "FileAlreadyExistsException", "%s exists and is a file", p)
		}
		return nil
	}
	if p != "/" {
		if err := s.mkdirAll(pathpkg.Dir(p), ""); err != nil {
			return err
		}
	}
	s.nodes[p] = s.newNode(true, permission)
	return nil
}

func (s *Service) children(dir string) []string {
	var names []string
	for p := range s.nodes {
		if isUnder(p, dir) && pathpkg.Dir(p) == dir {
			names = append(names, pathpkg.Base(p))
		}
	}
	sort.Strings(names)
	return names
}

func (s *Service) subtree(root string) []string {
	out := []string{root}
	for p := range s.nodes {
		if isUnder(p, root) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Service) touch(n *node) {
	n.mtime = s.now()
	n.atime = n.mtime
}

// --- data ---

func (s *Service) create(p string, q *adls.QueryParams, body []byte) (result, error) {
	permission, _ := q.Get("permission")
	parent := pathpkg.Dir(p)
	if existing, ok := s.nodes[p]; ok {
		if existing.dir {
			return result{}, remote(http.StatusForbidden, "FileAlreadyExistsException", "%s is a directory", p)
		}
		if !queryBool(q, "overwrite") {
			return result{}, remote(http.StatusForbidden, "FileAlreadyExistsException", "%s already exists", p)
		}
	}
	if v, _ := q.Get("CreateParent"); v == "false" {
		if pn, ok := s.nodes[parent]; !ok || !pn.dir {
			return result{}, notFound(parent)
		}
	} else if err := s.mkdirAll(parent, ""); err != nil {
		return result{}, err
	}
	n := s.newNode(false, permission)
	n.data = append([]byte(nil), body...)
	s.nodes[p] = n
	return empty(http.StatusCreated)
}

func (s *Service) appendAt(p string, q *adls.QueryParams, body []byte) (result, error) {
	n, err := s.lookupFile(p)
	if err != nil {
		return result{}, err
	}
	offset, err := queryInt(q, "offset", int64(len(n.data)))
	if err != nil {
		return result{}, err
	}
	if offset != int64(len(n.data)) {
		return result{}, remote(http.StatusBadRequest, "BadOffsetException",
			"append at offset %d but file length is %d", offset, len(n.data))
	}
	n.data = append(n.data, body...)
	s.touch(n)
	return empty(http.StatusOK)
}

// concurrentAppend always writes at the current end of the file.
func (s *Service) concurrentAppend(p string, q *adls.QueryParams, body []byte) (result, error) {
	n, ok := s.nodes[p]
	if !ok {
		if mode, _ := q.Get("appendMode"); mode != "autocreate" {
			return result{}, notFound(p)
		}
		if err := s.mkdirAll(pathpkg.Dir(p), ""); err != nil {
			return result{}, err
		}
		n = s.newNode(false, "")
		s.nodes[p] = n
	}
	if n.dir {
		return result{}, remote(http.StatusBadRequest, "FileNotFoundException", "%s is a directory", p)
	}
	n.data = append(n.data, body...)
	s.touch(n)
	return empty(http.StatusOK)
}

func (s *Service) open(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookupFile(p)
	if err != nil {
		return result{}, err
	}
	size := int64(len(n.data))
	offset, err := queryInt(q, "offset", 0)
	if err != nil {
		return result{}, err
	}
	length, err := queryInt(q, "length", size)
	if err != nil {
		return result{}, err
	}
	if offset > size {
		return result{}, badRequest("offset %d is past the end of %s (%d bytes)", offset, p, size)
	}
	end := offset + length
	if end > size {
		end = size
	}
	n.atime = s.now()
	return result{status: http.StatusOK, data: append([]byte(nil), n.data[offset:end]...)}, nil
}

func (s *Service) concat(p string, q *adls.QueryParams, body []byte) (result, error) {
	var req struct {
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return result{}, badRequest("invalid concat body: %v", err)
	}
	if len(req.Sources) == 0 {
		return result{}, badRequest("concat needs at least one source")
	}
	var merged []byte
	for _, src := range req.Sources {
		n, err := s.lookupFile(normalizePath(src))
		if err != nil {
			return result{}, err
		}
		merged = append(merged, n.data...)
	}

	dest, ok := s.nodes[p]
	if !ok {
		if err := s.mkdirAll(pathpkg.Dir(p), ""); err != nil {
			return result{}, err
		}
		dest = s.newNode(false, "")
		s.nodes[p] = dest
	} else if dest.dir {
		return result{}, remote(http.StatusBadRequest, "FileNotFoundException", "%s is a directory", p)
	}
	dest.data = append(dest.data, merged...)
	s.touch(dest)

	dirs := map[string]struct{}{}
	for _, src := range req.Sources {
		src = normalizePath(src)
		delete(s.nodes, src)
		dirs[pathpkg.Dir(src)] = struct{}{}
	}
	if queryBool(q, "deleteSourceDirectory") {
		for dir := range dirs {
			if dir != "/" && dir != pathpkg.Dir(p) && len(s.children(dir)) == 0 {
				delete(s.nodes, dir)
			}
		}
	}
	return empty(http.StatusOK)
}

// --- namespace ---

func (s *Service) mkdirs(p string, q *adls.QueryParams) (result, error) {
	permission, _ := q.Get("permission")
	if err := s.mkdirAll(p, permission); err != nil {
		return result{}, err
	}
	return ack(true)
}

// deletePath moves the subtree to the trash so it can be enumerated and
// restored.
func (s *Service) deletePath(p string, q *adls.QueryParams) (result, error) {
	if p == "/" {
		return result{}, remote(http.StatusForbidden, "AccessControlException", "cannot delete the root")
	}
	n, ok := s.nodes[p]
	if !ok {
		return ack(false)
	}
	if n.dir && len(s.children(p)) > 0 && !queryBool(q, "recursive") {
		return result{}, remote(http.StatusForbidden, "PathIsNotEmptyDirectoryException", "%s is not empty", p)
	}

	s.seq++
	item := &trashItem{
		token:    fmt.Sprintf("%s/%d%s", trashRoot, s.seq, p),
		original: p,
		dir:      n.dir,
		deleted:  s.now(),
		nodes:    make(map[string]*node),
	}
	for _, sub := range s.subtree(p) {
		item.nodes[strings.TrimPrefix(sub, p)] = s.nodes[sub]
		delete(s.nodes, sub)
	}
	s.trash = append(s.trash, item)
	return ack(true)
}

func (s *Service) rename(p string, q *adls.QueryParams) (result, error) {
	destination, _ := q.Get("destination")
	dest := normalizePath(destination)
	src, ok := s.nodes[p]
	if !ok || p == "/" || dest == p || isUnder(dest, p) {
		return ack(false)
	}
	if parent, ok := s.nodes[pathpkg.Dir(dest)]; !ok || !parent.dir {
		return ack(false)
	}
	if existing, ok := s.nodes[dest]; ok {
		overwrite, _ := q.Get("renameoptions")
		if existing.dir || src.dir || overwrite != "overwrite" {
			return ack(false)
		}
	}
	for _, sub := range s.subtree(p) {
		n := s.nodes[sub]
		delete(s.nodes, sub)
		s.nodes[dest+strings.TrimPrefix(sub, p)] = n
	}
	s.touch(src)
	return ack(true)
}

// --- metadata ---

// objectID maps a principal name to a stable object id.
func objectID(name string) string {
	if name == "" {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func principals(n *node, q *adls.QueryParams) (string, string) {
	if queryBool(q, "tooid") {
		return objectID(n.owner), objectID(n.group)
	}
	return n.owner, n.group
}

func statusOf(n *node, q *adls.QueryParams, name *string, minimal bool) map[string]any {
	doc := map[string]any{
		"type":             "FILE",
		"length":           len(n.data),
		"modificationTime": millis(n.mtime),
	}
	if n.dir {
		doc["type"] = "DIRECTORY"
		doc["length"] = 0
	}
	if name != nil {
		doc["pathSuffix"] = *name
	}
	if minimal {
		return doc
	}
	owner, group := principals(n, q)
	doc["accessTime"] = millis(n.atime)
	doc["blockSize"] = blockSize
	doc["replication"] = 1
	doc["permission"] = n.permission
	doc["owner"] = owner
	doc["group"] = group
	doc["aclBit"] = len(n.acl) > 0
	if !n.dir {
		doc["msExpirationTime"] = millis(n.expiry)
	}
	return doc
}

// fileStatus omits the entry name, as the service does for single lookups.
func (s *Service) fileStatus(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookup(p)
	if err != nil {
		return result{}, err
	}
	return reply(map[string]any{"FileStatus": statusOf(n, q, nil, false)})
}

func (s *Service) listStatus(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookup(p)
	if err != nil {
		return result{}, err
	}
	if !n.dir {
		return result{}, badRequest("%s is not a directory", p)
	}
	listAfter, _ := q.Get("listAfter")
	listBefore, _ := q.Get("listBefore")
	limit, err := queryInt(q, "listSize", 0)
	if err != nil {
		return result{}, err
	}
	selection, _ := q.Get("select")

	statuses := []map[string]any{}
	for _, name := range s.children(p) {
		if listAfter != "" && name <= listAfter {
			continue
		}
		if listBefore != "" && name >= listBefore {
			break
		}
		child := s.nodes[pathpkg.Join(p, name)]
		statuses = append(statuses, statusOf(child, q, &name, selection == "minimal"))
		if limit > 0 && int64(len(statuses)) >= limit {
			break
		}
	}
	return reply(map[string]any{"FileStatuses": map[string]any{"FileStatus": statuses}})
}

func (s *Service) contentSummary(p string) (result, error) {
	if _, err := s.lookup(p); err != nil {
		return result{}, err
	}
	var dirs, files, length int64
	for _, sub := range s.subtree(p) {
		n := s.nodes[sub]
		if n.dir {
			dirs++
			continue
		}
		files++
		length += int64(len(n.data))
	}
	return reply(map[string]any{"ContentSummary": map[string]int64{
		"directoryCount": dirs,
		"fileCount":      files,
		"length":         length,
		"spaceConsumed":  length,
	}})
}

func (s *Service) setOwner(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookup(p)
	if err != nil {
		return result{}, err
	}
	if v, _ := q.Get("owner"); v != "" {
		n.owner = v
	}
	if v, _ := q.Get("group"); v != "" {
		n.group = v
	}
	return empty(http.StatusOK)
}

func (s *Service) setPermission(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookup(p)
	if err != nil {
		return result{}, err
	}
	v, _ := q.Get("permission")
	if !adls.IsValidOctalPermission(v) {
		return result{}, badRequest("invalid permission %q", v)
	}
	n.permission = v
	return empty(http.StatusOK)
}

func (s *Service) setTimes(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookup(p)
	if err != nil {
		return result{}, err
	}
	at, err := queryInt(q, "accesstime", -1)
	if err != nil {
		return result{}, err
	}
	mt, err := queryInt(q, "modificationtime", -1)
	if err != nil {
		return result{}, err
	}
	if at >= 0 {
		n.atime = time.UnixMilli(at).UTC()
	}
	if mt >= 0 {
		n.mtime = time.UnixMilli(mt).UTC()
	}
	return empty(http.StatusOK)
}

func (s *Service) setExpiry(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookupFile(p)
	if err != nil {
		return result{}, err
	}
	option, _ := q.Get("expiryOption")
	value, err := queryInt(q, "expireTime", 0)
	if err != nil {
		return result{}, err
	}
	switch adls.ExpiryOption(option) {
	case adls.ExpiryNever:
		n.expiry = time.Time{}
	case adls.ExpiryRelativeToNow:
		n.expiry = s.now().Add(time.Duration(value) * time.Millisecond)
	case adls.ExpiryRelativeToCreationDate:
		n.expiry = n.ctime.Add(time.Duration(value) * time.Millisecond)
	case adls.ExpiryAbsolute:
		n.expiry = time.UnixMilli(value).UTC()
	default:
		return result{}, badRequest("unknown expiry option %q", option)
	}
	return empty(http.StatusOK)
}

// --- access control ---

// ownerClass returns the owner triad of an octal permission such as "750"
// or "1750".
func ownerClass(permission string) string {
	digits := permission
	if len(digits) == 4 {
		digits = digits[1:]
	}
	for len(digits) < 3 {
		digits = "0" + digits
	}
	d := digits[0] - '0'
	b := []byte("---")
	if d&4 != 0 {
		b[0] = 'r'
	}
	if d&2 != 0 {
		b[1] = 'w'
	}
	if d&1 != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// checkAccess evaluates the owner class; the mock caller owns everything.
func (s *Service) checkAccess(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookup(p)
	if err != nil {
		return result{}, err
	}
	want, _ := q.Get("fsaction")
	if !acl.IsValidAction(want) {
		return result{}, badRequest("invalid fsaction %q", want)
	}
	have := ownerClass(n.permission)
	for i := 0; i < 3; i++ {
		if want[i] != '-' && have[i] != want[i] {
			return result{}, remote(http.StatusForbidden, "AccessControlException",
				"permission denied: %s on %s (have %s)", want, p, have)
		}
	}
	return empty(http.StatusOK)
}

func aclKey(e acl.Entry) string {
	return string(e.Scope) + ":" + string(e.Type) + ":" + e.Name
}

func (s *Service) updateAcl(op adls.Operation, p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookup(p)
	if err != nil {
		return result{}, err
	}
	spec, _ := q.Get("aclspec")

	switch op {
	case adls.OpRemoveAcl:
		n.acl = nil
	case adls.OpRemoveDefaultAcl:
		kept := n.acl[:0]
		for _, e := range n.acl {
			if e.Scope != acl.ScopeDefault {
				kept = append(kept, e)
			}
		}
		n.acl = kept
	case adls.OpSetAcl:
		entries, err := acl.ParseSpec(spec, false)
		if err != nil {
			return result{}, badRequest("%v", err)
		}
		n.acl = entries
	case adls.OpModifyAclEntries:
		entries, err := acl.ParseSpec(spec, false)
		if err != nil {
			return result{}, badRequest("%v", err)
		}
		for _, e := range entries {
			replaced := false
			for i := range n.acl {
				if aclKey(n.acl[i]) == aclKey(e) {
					n.acl[i] = e
					replaced = true
				}
			}
			if !replaced {
				n.acl = append(n.acl, e)
			}
		}
	case adls.OpRemoveAclEntries:
		entries, err := acl.ParseSpec(spec, true)
		if err != nil {
			return result{}, badRequest("%v", err)
		}
		drop := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			drop[aclKey(e)] = struct{}{}
		}
		kept := n.acl[:0]
		for _, e := range n.acl {
			if _, gone := drop[aclKey(e)]; !gone {
				kept = append(kept, e)
			}
		}
		n.acl = kept
	}
	return empty(http.StatusOK)
}

func (s *Service) aclStatus(p string, q *adls.QueryParams) (result, error) {
	n, err := s.lookup(p)
	if err != nil {
		return result{}, err
	}
	entries := make([]string, 0, len(n.acl))
	for _, e := range n.acl {
		entries = append(entries, e.String())
	}
	owner, group := principals(n, q)
	return reply(map[string]any{"AclStatus": map[string]any{
		"entries":    entries,
		"owner":      owner,
		"group":      group,
		"permission": n.permission,
		"stickyBit":  len(n.permission) == 4 && n.permission[0] == '1',
	}})
}

// --- trash ---

func (s *Service) enumerateDeleted(q *adls.QueryParams) (result, error) {
	hint, _ := q.Get("hint")
	if strings.TrimSpace(hint) == "" {
		return result{}, badRequest("hint is required")
	}
	listAfter, _ := q.Get("listAfter")
	limit, err := queryInt(q, "listSize", 4000)
	if err != nil {
		return result{}, err
	}

	type entryJSON struct {
		TrashDirPath string `json:"trashDirPath"`
		OriginalPath string `json:"originalPath"`
		Type         string `json:"type"`
		CreationTime int64  `json:"creationTime"`
	}
	entries := []entryJSON{}
	started := listAfter == ""
	next := ""
	for _, item := range s.trash {
		if !started {
			started = item.token == listAfter
			continue
		}
		if !strings.Contains(item.original, hint) {
			continue
		}
		if int64(len(entries)) >= limit {
			next = entries[len(entries)-1].TrashDirPath
			break
		}
		typ := "FILE"
		if item.dir {
			typ = "DIRECTORY"
		}
		entries = append(entries, entryJSON{
			TrashDirPath: item.token,
			OriginalPath: item.original,
			Type:         typ,
			CreationTime: millis(item.deleted),
		})
	}

	trashDir := map[string]any{"trashDirEntry": entries}
	if next != "" {
		trashDir["nextListAfter"] = next
	}
	return reply(map[string]any{"trashDir": trashDir})
}

func (s *Service) restoreDeleted(q *adls.QueryParams) (result, error) {
	token, _ := q.Get("restoreToken")
	idx := -1
	for i, item := range s.trash {
		if item.token == token {
			idx = i
			break
		}
	}
	if idx < 0 {
		return result{}, remote(http.StatusNotFound, "FileNotFoundException", "no deleted item with token %q", token)
	}
	item := s.trash[idx]

	if typ, _ := q.Get("type"); typ != "" {
		isDir := strings.EqualFold(typ, "folder") || strings.EqualFold(typ, "directory")
		if isDir != item.dir {
			return result{}, badRequest("restore type %q does not match the deleted item", typ)
		}
	}
	dest := item.original
	if v, _ := q.Get("restoreDestination"); v != "" {
		dest = normalizePath(v)
	}
	if _, exists := s.nodes[dest]; exists {
		action, _ := q.Get("restoreAction")
		if !strings.EqualFold(action, "overwrite") {
			return result{}, remote(http.StatusConflict, "FileAlreadyExistsException", "%s already exists", dest)
		}
		for _, sub := range s.subtree(dest) {
			delete(s.nodes, sub)
		}
	}
	if err := s.mkdirAll(pathpkg.Dir(dest), ""); err != nil {
		return result{}, err
	}
	for rel, n := range item.nodes {
		s.nodes[dest+rel] = n
	}
	s.trash = append(s.trash[:idx], s.trash[idx+1:]...)
	return empty(http.StatusOK)
}
