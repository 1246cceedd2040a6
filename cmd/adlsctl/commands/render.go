package commands

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

type entryView struct {
	Name       string    `json:"name" yaml:"name"`
	Path       string    `json:"path" yaml:"path"`
	Type       string    `json:"type" yaml:"type"`
	Length     int64     `json:"length" yaml:"length"`
	Permission string    `json:"permission,omitempty" yaml:"permission,omitempty"`
	Owner      string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	Group      string    `json:"group,omitempty" yaml:"group,omitempty"`
	AclBit     bool      `json:"aclBit" yaml:"aclBit"`
	Modified   time.Time `json:"modified" yaml:"modified"`
	Accessed   time.Time `json:"accessed" yaml:"accessed"`
	Expires    time.Time `json:"expires" yaml:"expires"`
}

func viewOf(e adls.DirectoryEntry) entryView {
	return entryView{
		Name:       e.Name,
		Path:       e.FullName,
		Type:       string(e.Type),
		Length:     e.Length,
		Permission: e.Permission,
		Owner:      e.User,
		Group:      e.Group,
		AclBit:     e.AclBit,
		Modified:   e.LastModifiedTime,
		Accessed:   e.LastAccessTime,
		Expires:    e.ExpiryTime,
	}
}

type entryList []entryView

func newEntryList(entries []adls.DirectoryEntry) entryList {
	out := make(entryList, 0, len(entries))
	for _, e := range entries {
		out = append(out, viewOf(e))
	}
	return out
}

func (l entryList) Headers() []string {
	return []string{"TYPE", "PERMISSION", "OWNER", "GROUP", "SIZE", "MODIFIED", "NAME"}
}

func (l entryList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		rows = append(rows, []string{
			typeLetter(e.Type) + aclMark(e.AclBit),
			e.Permission,
			e.Owner,
			e.Group,
			humanize.IBytes(uint64(max(e.Length, 0))),
			when(e.Modified),
			e.Name,
		})
	}
	return rows
}

func (e entryView) pairs() [][2]string {
	pairs := [][2]string{
		{"Path", e.Path},
		{"Type", e.Type},
		{"Size", humanize.IBytes(uint64(max(e.Length, 0))) + " (" + humanize.Comma(e.Length) + " bytes)"},
		{"Permission", e.Permission},
		{"Owner", e.Owner},
		{"Group", e.Group},
		{"ACL", strconv.FormatBool(e.AclBit)},
		{"Modified", when(e.Modified)},
		{"Accessed", when(e.Accessed)},
	}
	if !e.Expires.IsZero() {
		pairs = append(pairs, [2]string{"Expires", e.Expires.Format(time.RFC3339)})
	}
	return pairs
}

type summaryView struct {
	Directories   int64 `json:"directoryCount" yaml:"directoryCount"`
	Files         int64 `json:"fileCount" yaml:"fileCount"`
	Length        int64 `json:"length" yaml:"length"`
	SpaceConsumed int64 `json:"spaceConsumed" yaml:"spaceConsumed"`
}

func (s summaryView) pairs() [][2]string {
	return [][2]string{
		{"Directories", humanize.Comma(s.Directories)},
		{"Files", humanize.Comma(s.Files)},
		{"Size", humanize.IBytes(uint64(max(s.Length, 0)))},
		{"Space consumed", humanize.IBytes(uint64(max(s.SpaceConsumed, 0)))},
	}
}

type trashView struct {
	Token    string    `json:"token" yaml:"token"`
	Original string    `json:"originalPath" yaml:"originalPath"`
	Type     string    `json:"type" yaml:"type"`
	Deleted  time.Time `json:"deleted" yaml:"deleted"`
}

type trashPage struct {
	Entries       []trashView `json:"entries" yaml:"entries"`
	NextListAfter string      `json:"nextListAfter,omitempty" yaml:"nextListAfter,omitempty"`
}

func newTrashPage(ts *adls.TrashStatus) trashPage {
	page := trashPage{Entries: make([]trashView, 0, len(ts.Entries)), NextListAfter: ts.NextListAfter}
	for _, e := range ts.Entries {
		page.Entries = append(page.Entries, trashView{
			Token:    e.RestoreToken(),
			Original: e.OriginalPath,
			Type:     string(e.Type),
			Deleted:  e.CreationTime,
		})
	}
	return page
}

func (p trashPage) Headers() []string {
	return []string{"TOKEN", "ORIGINAL PATH", "TYPE", "DELETED"}
}

func (p trashPage) Rows() [][]string {
	rows := make([][]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		rows = append(rows, []string{e.Token, e.Original, e.Type, when(e.Deleted)})
	}
	return rows
}

type aclView struct {
	Owner      string   `json:"owner" yaml:"owner"`
	Group      string   `json:"group" yaml:"group"`
	Permission string   `json:"permission" yaml:"permission"`
	StickyBit  bool     `json:"stickyBit" yaml:"stickyBit"`
	Entries    []string `json:"entries" yaml:"entries"`
}

func typeLetter(t string) string {
	if t == string(adls.TypeDirectory) {
		return "d"
	}
	return "-"
}

func aclMark(aclBit bool) string {
	if aclBit {
		return "+"
	}
	return ""
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
