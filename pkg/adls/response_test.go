package adls

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlstore/adls_sdk_go/pkg/acl"
)

func faultCategory(t *testing.T, st *Status) string {
	t.Helper()
	require.False(t, st.Successful)
	require.Equal(t, KindParse, st.Kind)
	require.NotEmpty(t, st.Message)
	var fault *ParseFault
	require.True(t, errors.As(st.Cause, &fault), "cause %T is not a parse fault", st.Cause)
	return fault.Category
}

func TestParseBoolean(t *testing.T) {
	st := newStatus()
	assert.True(t, parseBoolean(st, []byte(`{"boolean": true}`)))
	assert.True(t, st.Successful)

	st = newStatus()
	assert.False(t, parseBoolean(st, []byte(`{"boolean":false}`)))
	assert.True(t, st.Successful)

	st = newStatus()
	assert.True(t, parseBoolean(st, []byte(`{"extra":{"nested":[1,{"a":null}]},"boolean":true,"more":"x"}`)))
	assert.True(t, st.Successful)

	st = newStatus()
	assert.True(t, parseBoolean(st, []byte("{\"boolean\":true}\r\n\t ")))
	assert.True(t, st.Successful)

	st = newStatus()
	assert.True(t, parseBoolean(st, []byte(`{"boolean":false,"boolean":true}`)))
	assert.True(t, st.Successful)
}

func TestParseBooleanFaults(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		category string
	}{
		{name: "missing member", body: `{"other":true}`, category: "missing-member"},
		{name: "wrong type", body: `{"boolean":"yes"}`, category: "unexpected-token"},
		{name: "not an object", body: `[true]`, category: "unexpected-token"},
		{name: "empty", body: ``, category: "unexpected-token"},
		{name: "truncated literal", body: `{"boolean": tru}`, category: "syntax"},
		{name: "trailing garbage", body: `{"boolean": true} trailing garbage`, category: "trailing-data"},
		{name: "trailing symbols", body: `{"boolean": true} #`, category: "trailing-data"},
		{name: "second document", body: `{"boolean": true}{"boolean": false}`, category: "trailing-data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newStatus()
			assert.False(t, parseBoolean(st, []byte(tc.body)))
			assert.Equal(t, tc.category, faultCategory(t, st))
		})
	}
}

func TestParseAclStatus(t *testing.T) {
	body := `{"AclStatus":{"entries":["user:bob:r-x","default:group::rwx"],` +
		`"owner":"alice","group":"staff","permission":"1750","stickyBit":true,"future":{"x":1}}}`
	st := newStatus()
	got := parseAclStatus(st, []byte(body), acl.Codec{})
	require.True(t, st.Successful, st.Message)
	assert.Equal(t, &AclStatus{
		Entries: []acl.Entry{
			{Scope: acl.ScopeAccess, Type: acl.TypeUser, Name: "bob", Action: acl.ActionReadExecute},
			{Scope: acl.ScopeDefault, Type: acl.TypeGroup, Name: "", Action: acl.ActionAll},
		},
		Owner:      "alice",
		Group:      "staff",
		Permission: "1750",
		StickyBit:  true,
	}, got)
}

func TestParseAclStatusNumericPermission(t *testing.T) {
	st := newStatus()
	got := parseAclStatus(st, []byte(`{"AclStatus":{"entries":[],"permission":770}}`), acl.Codec{})
	require.True(t, st.Successful, st.Message)
	assert.Equal(t, "770", got.Permission)
	assert.Empty(t, got.Entries)
}

func TestParseAclStatusFaults(t *testing.T) {
	st := newStatus()
	assert.Nil(t, parseAclStatus(st, []byte(`{"AclStatus":{"entries":["user:bob"]}}`), acl.Codec{}))
	assert.Equal(t, "acl-entry", faultCategory(t, st))

	st = newStatus()
	assert.Nil(t, parseAclStatus(st, []byte(`{"AclStatus":{"entries":{}}}`), acl.Codec{}))
	assert.Equal(t, "unexpected-token", faultCategory(t, st))

	st = newStatus()
	assert.Nil(t, parseAclStatus(st, []byte(`{"FileStatus":{}}`), acl.Codec{}))
	assert.Equal(t, "missing-member", faultCategory(t, st))

	st = newStatus()
	assert.Nil(t, parseAclStatus(st, []byte(`{"AclStatus":{"owner":"alice"}} {"AclStatus":{}}`), acl.Codec{}))
	assert.Equal(t, "trailing-data", faultCategory(t, st))
}

func TestParseAclStatusRepeatedWrapperKeepsLast(t *testing.T) {
	body := `{"AclStatus":{"entries":["user:bob:r-x"],"owner":"alice"},"AclStatus":{"entries":["group::rwx"]}}`
	st := newStatus()
	got := parseAclStatus(st, []byte(body), acl.Codec{})
	require.True(t, st.Successful, st.Message)
	assert.Equal(t, &AclStatus{
		Entries: []acl.Entry{{Scope: acl.ScopeAccess, Type: acl.TypeGroup, Name: "", Action: acl.ActionAll}},
	}, got)
}

func TestParseContentSummaryKeepsLengthSeparate(t *testing.T) {
	body := `{"ContentSummary":{"directoryCount":2,"fileCount":3,"length":100,"quota":-1,"spaceConsumed":300}}`
	st := newStatus()
	got := parseContentSummary(st, []byte(body))
	require.True(t, st.Successful, st.Message)
	assert.Equal(t, &ContentSummary{DirectoryCount: 2, FileCount: 3, Length: 100, SpaceConsumed: 300}, got)
}

func TestParseContentSummaryFaults(t *testing.T) {
	st := newStatus()
	assert.Nil(t, parseContentSummary(st, []byte(`{"ContentSummary":{"length":"big"}}`)))
	assert.Equal(t, "unexpected-token", faultCategory(t, st))

	st = newStatus()
	assert.Nil(t, parseContentSummary(st, []byte(`{"ContentSummary":`)))
	faultCategory(t, st)

	st = newStatus()
	assert.Nil(t, parseContentSummary(st, []byte(`{"ContentSummary":{"length":1}}]`)))
	assert.Equal(t, "trailing-data", faultCategory(t, st))
}

func TestParseFileStatusNaming(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantName string
		wantFull string
	}{
		{
			name:     "empty name keeps the requested path",
			body:     `{"FileStatus":{"name":"","type":"FILE"}}`,
			wantName: "",
			wantFull: "/data/x",
		},
		{
			name:     "missing name falls back to last component",
			body:     `{"FileStatus":{"type":"FILE"}}`,
			wantName: "x",
			wantFull: "/data/x",
		},
		{
			name:     "returned name is appended",
			body:     `{"FileStatus":{"pathSuffix":"y","type":"FILE"}}`,
			wantName: "y",
			wantFull: "/data/x/y",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newStatus()
			e := parseFileStatus(st, "/data/x", []byte(tc.body))
			require.True(t, st.Successful, st.Message)
			assert.Equal(t, tc.wantName, e.Name)
			assert.Equal(t, tc.wantFull, e.FullName)
		})
	}
}

func TestParseFileStatusFields(t *testing.T) {
	body := `{"FileStatus":{"type":"file","length":12,"blockSize":268435456,"accessTime":1700000000000,` +
		`"modificationTime":1700000001000,"replication":1,"permission":750,"owner":"o","group":"g",` +
		`"aclBit":true,"msExpirationTime":0,"unknown":"ignored"}}`
	st := newStatus()
	e := parseFileStatus(st, `C:\dir\f.txt`, []byte(body))
	require.True(t, st.Successful, st.Message)
	assert.Equal(t, "f.txt", e.Name)
	assert.Equal(t, TypeFile, e.Type)
	assert.Equal(t, int64(12), e.Length)
	assert.Equal(t, "750", e.Permission)
	assert.True(t, e.AclBit)
	assert.Equal(t, time.UnixMilli(1700000001000).UTC(), e.LastModifiedTime)
	assert.True(t, e.ExpiryTime.IsZero())
}

func TestParseListStatusFullNames(t *testing.T) {
	body := []byte(`{"FileStatuses":{"FileStatus":[{"name":"a.csv"},{"name":"b.csv"}]}}`)
	for _, path := range []string{"/data", "/data/"} {
		st := newStatus()
		entries := parseListStatus(st, path, body)
		require.True(t, st.Successful, st.Message)
		require.Len(t, entries, 2)
		assert.Equal(t, "/data/a.csv", entries[0].FullName)
		assert.Equal(t, "/data/b.csv", entries[1].FullName)
		assert.Equal(t, "a.csv", entries[0].Name)
	}
}

func TestParseTrashStatusDerivesCount(t *testing.T) {
	body := `{"trashDir":{"trashDirEntry":[` +
		`{"trashDirPath":"/$Trash/1/a","originalPath":"/a","type":"FILE","creationTime":1},` +
		`{"trashDirPath":"/$Trash/2/b","originalPath":"/b","type":"DIRECTORY","creationTime":2}],` +
		`"nextListAfter":"/$Trash/2/b"}}`
	st := newStatus()
	ts := parseTrashStatus(st, []byte(body))
	require.True(t, st.Successful, st.Message)
	assert.Equal(t, 2, ts.NumFound)
	assert.Equal(t, "/$Trash/2/b", ts.NextListAfter)
	assert.Equal(t, "/$Trash/1/a", ts.Entries[0].RestoreToken())
	assert.Equal(t, TypeDirectory, ts.Entries[1].Type)
}

func TestStructuredFaultCategories(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		category string
	}{
		{name: "empty", body: "  ", category: "empty-body"},
		{name: "syntax", body: `{"FileStatuses":`, category: "syntax"},
		{name: "missing", body: `{"boolean":true}`, category: "missing-member"},
		{name: "type mismatch", body: `{"FileStatuses":{"FileStatus":"nope"}}`, category: "type-mismatch"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newStatus()
			assert.Nil(t, parseListStatus(st, "/", []byte(tc.body)))
			assert.Equal(t, tc.category, faultCategory(t, st))
		})
	}
}

func TestLastComponent(t *testing.T) {
	assert.Equal(t, "c", lastComponent("/a/b/c"))
	assert.Equal(t, "c", lastComponent(`a\b\c`))
	assert.Equal(t, "file", lastComponent("vol:file"))
	assert.Equal(t, "plain", lastComponent("plain"))
	assert.Equal(t, "", lastComponent("/a/"))
}
