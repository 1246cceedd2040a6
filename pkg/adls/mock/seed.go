package mock

import (
	"encoding/base64"
	"os"
	pathpkg "path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/adlstore/adls_sdk_go/pkg/acl"
)

// Seed describes an initial tree.
//
//	owner: alice
//	group: analysts
//	entries:
//	  - path: /data/a.csv
//	    content: "id,value\n1,42\n"
//	  - path: /data/archive
//	    dir: true
//	    permission: "750"
//	    acl: ["user:bob:r-x"]
type Seed struct {
	Owner   string      `yaml:"owner"`
	Group   string      `yaml:"group"`
	Entries []SeedEntry `yaml:"entries"`
}

// SeedEntry is one file or directory. Content and Base64 are exclusive.
type SeedEntry struct {
	Path       string     `yaml:"path"`
	Dir        bool       `yaml:"dir"`
	Content    string     `yaml:"content"`
	Base64     string     `yaml:"base64"`
	Permission string     `yaml:"permission"`
	Owner      string     `yaml:"owner"`
	Group      string     `yaml:"group"`
	ACL        []string   `yaml:"acl"`
	Modified   *time.Time `yaml:"modified"`
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, errors.Wrap(err, "mock: decode seed")
	}
	return &seed, nil
}

// LoadSeedFile reads and decodes a YAML seed file.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mock: read seed %s", path)
	}
	return ParseSeed(data)
}

// Seed adds the entries of seed to the tree, creating parents as needed.
// Existing entries are replaced.
func (s *Service) Seed(seed *Seed) error {
	if seed == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if seed.Owner != "" {
		s.owner = seed.Owner
	}
	if seed.Group != "" {
		s.group = seed.Group
	}

	for i, e := range seed.Entries {
		if strings.TrimSpace(e.Path) == "" {
			return errors.Errorf("mock: seed entry %d has no path", i)
		}
		if e.Content != "" && e.Base64 != "" {
			return errors.Errorf("mock: seed entry %s sets both content and base64", e.Path)
		}
		p := normalizePath(e.Path)
		if p != "/" {
			if err := s.mkdirAll(pathpkg.Dir(p), ""); err != nil {
				return err
			}
		}

		n := s.newNode(e.Dir, e.Permission)
		if !e.Dir {
			n.data = []byte(e.Content)
			if e.Base64 != "" {
				data, err := base64.StdEncoding.DecodeString(e.Base64)
				if err != nil {
					return errors.Wrapf(err, "mock: decode base64 of %s", e.Path)
				}
				n.data = data
			}
		}
		if e.Owner != "" {
			n.owner = e.Owner
		}
		if e.Group != "" {
			n.group = e.Group
		}
		for _, raw := range e.ACL {
			entry, err := acl.ParseEntry(raw, false)
			if err != nil {
				return errors.Wrapf(err, "mock: acl of %s", e.Path)
			}
			n.acl = append(n.acl, entry)
		}
		if e.Modified != nil {
			n.mtime = e.Modified.UTC()
			n.atime = n.mtime
		}
		s.nodes[p] = n
	}
	return nil
}
