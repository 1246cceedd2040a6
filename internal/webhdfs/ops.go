package webhdfs

import (
	"net/http"
	"strings"
)

// APIVersion is sent with every request as the api-version query parameter.
const APIVersion = "2018-09-01"

const (
	// CorePrefix is the namespace of the standard operations.
	CorePrefix = "/webhdfs/v1"
	// ExtPrefix is the namespace of service specific extensions.
	ExtPrefix = "/WebHdfsExt"
)

// Spec describes how an operation token is carried on the wire.
type Spec struct {
	Name   string
	Method string
	// Ext operations live under ExtPrefix instead of CorePrefix.
	Ext bool
	// SendsBody is set for operations whose request carries a payload.
	SendsBody bool
	// Idempotent operations can be replayed after a dropped connection or a
	// 5xx reply. Appends and concat may already have been applied.
	Idempotent bool
}

var specs = map[string]Spec{
	"OPEN":                  {Name: "OPEN", Method: http.MethodGet, Idempotent: true},
	"GETFILESTATUS":         {Name: "GETFILESTATUS", Method: http.MethodGet, Idempotent: true},
	"LISTSTATUS":            {Name: "LISTSTATUS", Method: http.MethodGet, Idempotent: true},
	"GETCONTENTSUMMARY":     {Name: "GETCONTENTSUMMARY", Method: http.MethodGet, Idempotent: true},
	"GETACLSTATUS":          {Name: "GETACLSTATUS", Method: http.MethodGet, Idempotent: true},
	"CHECKACCESS":           {Name: "CHECKACCESS", Method: http.MethodGet, Idempotent: true},
	"CREATE":                {Name: "CREATE", Method: http.MethodPut, SendsBody: true, Idempotent: true},
	"MKDIRS":                {Name: "MKDIRS", Method: http.MethodPut, Idempotent: true},
	"RENAME":                {Name: "RENAME", Method: http.MethodPut, Idempotent: true},
	"SETOWNER":              {Name: "SETOWNER", Method: http.MethodPut, Idempotent: true},
	"SETPERMISSION":         {Name: "SETPERMISSION", Method: http.MethodPut, Idempotent: true},
	"SETTIMES":              {Name: "SETTIMES", Method: http.MethodPut, Idempotent: true},
	"MODIFYACLENTRIES":      {Name: "MODIFYACLENTRIES", Method: http.MethodPut, Idempotent: true},
	"REMOVEACLENTRIES":      {Name: "REMOVEACLENTRIES", Method: http.MethodPut, Idempotent: true},
	"REMOVEDEFAULTACL":      {Name: "REMOVEDEFAULTACL", Method: http.MethodPut, Idempotent: true},
	"REMOVEACL":             {Name: "REMOVEACL", Method: http.MethodPut, Idempotent: true},
	"SETACL":                {Name: "SETACL", Method: http.MethodPut, Idempotent: true},
	"APPEND":                {Name: "APPEND", Method: http.MethodPost, SendsBody: true},
	"MSCONCAT":              {Name: "MSCONCAT", Method: http.MethodPost, SendsBody: true},
	"DELETE":                {Name: "DELETE", Method: http.MethodDelete, Idempotent: true},
	"CONCURRENTAPPEND":      {Name: "CONCURRENTAPPEND", Method: http.MethodPost, Ext: true, SendsBody: true},
	"SETEXPIRY":             {Name: "SETEXPIRY", Method: http.MethodPut, Ext: true, Idempotent: true},
	"ENUMERATEDELETEDITEMS": {Name: "ENUMERATEDELETEDITEMS", Method: http.MethodPost, Idempotent: true},
	"RESTOREDELETEDITEMS":   {Name: "RESTOREDELETEDITEMS", Method: http.MethodPost, Idempotent: true},
}

// Lookup returns the wire description of an operation token.
func Lookup(name string) (Spec, bool) {
	s, ok := specs[strings.ToUpper(name)]
	return s, ok
}

// URLPath joins the operation namespace and a file-store path.
func (s Spec) URLPath(path string) string {
	prefix := CorePrefix
	if s.Ext {
		prefix = ExtPrefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}

// SplitURLPath strips a known namespace prefix from a request path. It is the
// inverse of URLPath and is used by servers speaking the protocol.
func SplitURLPath(urlPath string) (string, bool) {
	for _, prefix := range []string{CorePrefix, ExtPrefix} {
		if urlPath == prefix {
			return "/", true
		}
		if strings.HasPrefix(urlPath, prefix+"/") {
			return urlPath[len(prefix):], true
		}
	}
	return "", false
}
