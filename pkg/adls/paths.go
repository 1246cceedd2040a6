package adls

import "strings"

// nameSingleEntry fills the names of a GETFILESTATUS reply. The display name
// falls back to the last component of path only when the service omitted
// it; the full name equals path whenever the returned name is missing or
// empty, and is path + "/" + name otherwise.
func nameSingleEntry(e *DirectoryEntry, path string, returned *string) {
	if returned == nil {
		e.Name = lastComponent(path)
	} else {
		e.Name = *returned
	}

	if returned == nil || *returned == "" {
		e.FullName = path
	} else {
		e.FullName = path + "/" + *returned
	}
}

// nameListedEntry fills the names of one LISTSTATUS element. prefix must
// already end in "/".
func nameListedEntry(e *DirectoryEntry, prefix string, returned *string) {
	if returned != nil {
		e.Name = *returned
	}
	e.FullName = prefix + e.Name
}

func listingPrefix(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

// lastComponent returns the text after the last path or volume separator.
func lastComponent(path string) string {
	return path[strings.LastIndexAny(path, `/\:`)+1:]
}
