package acl

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Scope selects whether an entry applies to the object itself or is
// inherited by children created under a directory.
type Scope string

const (
	ScopeAccess  Scope = "access"
	ScopeDefault Scope = "default"
)

// Type is the principal class an entry grants permissions to.
type Type string

const (
	TypeUser  Type = "user"
	TypeGroup Type = "group"
	TypeMask  Type = "mask"
	TypeOther Type = "other"
)

// Action is an rwx permission triple.
type Action string

const (
	ActionNone         Action = "---"
	ActionExecute      Action = "--x"
	ActionWrite        Action = "-w-"
	ActionWriteExecute Action = "-wx"
	ActionRead         Action = "r--"
	ActionReadExecute  Action = "r-x"
	ActionReadWrite    Action = "rw-"
	ActionAll          Action = "rwx"
)

var rwxPattern = regexp.MustCompile(`^[r-][w-][x-]$`)

// IsValidAction reports whether s is a three character rwx string.
func IsValidAction(s string) bool {
	return rwxPattern.MatchString(s)
}

// Entry is one access-control entry.
type Entry struct {
	Scope  Scope
	Type   Type
	Name   string
	Action Action
}

// String renders the entry in its spec form, including the permission.
func (e Entry) String() string {
	return e.format(false)
}

func (e Entry) format(removeAcl bool) string {
	var b strings.Builder
	if e.Scope == ScopeDefault {
		b.WriteString("default:")
	}
	b.WriteString(string(e.Type))
	b.WriteByte(':')
	b.WriteString(e.Name)
	if !removeAcl {
		b.WriteByte(':')
		b.WriteString(string(e.Action))
	}
	return b.String()
}

// ParseEntry parses "[default:]type:name:perm". When removeAcl is set the
// permission segment is omitted from the grammar.
func ParseEntry(s string, removeAcl bool) (Entry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Entry{}, errors.New("acl: empty entry")
	}
	parts := strings.Split(s, ":")
	e := Entry{Scope: ScopeAccess}
	if parts[0] == string(ScopeDefault) {
		e.Scope = ScopeDefault
		parts = parts[1:]
	}

	want := 3
	if removeAcl {
		want = 2
	}
	if len(parts) != want {
		return Entry{}, errors.Errorf("acl: malformed entry %q", s)
	}

	switch Type(parts[0]) {
	case TypeUser, TypeGroup, TypeMask, TypeOther:
		e.Type = Type(parts[0])
	default:
		return Entry{}, errors.Errorf("acl: unknown entry type %q in %q", parts[0], s)
	}
	e.Name = parts[1]
	if (e.Type == TypeMask || e.Type == TypeOther) && e.Name != "" {
		return Entry{}, errors.Errorf("acl: %s entries cannot be named: %q", e.Type, s)
	}

	if !removeAcl {
		if !IsValidAction(parts[2]) {
			return Entry{}, errors.Errorf("acl: invalid permission %q in %q", parts[2], s)
		}
		e.Action = Action(parts[2])
	}
	return e, nil
}

// ParseSpec parses a comma separated list of entries.
func ParseSpec(spec string, removeAcl bool) ([]Entry, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, errors.New("acl: empty spec")
	}
	raw := strings.Split(spec, ",")
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		e, err := ParseEntry(r, removeAcl)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SerializeSpec joins entries into the comma separated wire form.
func SerializeSpec(entries []Entry, removeAcl bool) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.format(removeAcl))
	}
	return strings.Join(parts, ",")
}

// Codec is the default grammar implementation used by the client.
type Codec struct{}

func (Codec) ParseEntry(s string) (Entry, error) {
	return ParseEntry(s, false)
}

func (Codec) Serialize(entries []Entry, removeAcl bool) string {
	return SerializeSpec(entries, removeAcl)
}
