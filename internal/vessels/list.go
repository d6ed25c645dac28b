// Package vessels loads the approved vessel reference list and answers
// membership queries under a fixed match policy.
package vessels

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// MatchPolicy names the comparison used by List.Contains
const MatchPolicy = "case-insensitive"

var (
	// ErrNotFound means the reference list file does not exist
	ErrNotFound = errors.New("vessel list not found")

	// ErrInvalid means the file is not a list of vessel names
	ErrInvalid = errors.New("invalid vessel list")
)

// List is an immutable set of approved vessel names
type List struct {
	names []string          // Original spellings, in file order
	index map[string]string // canonical key -> original spelling
}

// NewList builds a list from names. Blank entries are ignored; when two
// entries share a canonical key the first spelling wins.
func NewList(names []string) *List {
	l := &List{index: make(map[string]string, len(names))}
	for _, n := range names {
		key := Canonical(n)
		if key == "" {
			continue
		}
		if _, dup := l.index[key]; dup {
			continue
		}
		l.index[key] = n
		l.names = append(l.names, n)
	}
	return l
}

// Load reads a vessel list from a JSON array or YAML sequence of strings.
// The format is chosen by file extension; anything other than .yaml/.yml
// is parsed as JSON.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read vessel list: %w", err)
	}

	var names []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &names)
	default:
		err = json.Unmarshal(data, &names)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: must contain an array of strings: %v", ErrInvalid, path, err)
	}
	if names == nil {
		return nil, fmt.Errorf("%w: %s: empty document", ErrInvalid, path)
	}

	return NewList(names), nil
}

// Contains reports whether name matches an approved vessel
func (l *List) Contains(name string) bool {
	_, ok := l.Lookup(name)
	return ok
}

// Lookup returns the approved spelling that name matches
func (l *List) Lookup(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	key := Canonical(name)
	if key == "" {
		return "", false
	}
	match, ok := l.index[key]
	return match, ok
}

// Len returns the number of distinct approved vessels
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Names returns the approved spellings in file order
func (l *List) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Sorted returns the approved spellings in lexical order
func (l *List) Sorted() []string {
	out := l.Names()
	sort.Strings(out)
	return out
}

// Canonical returns the comparison key for a vessel name: NFC normalized,
// surrounding whitespace trimmed, inner whitespace collapsed, case folded.
func Canonical(name string) string {
	s := norm.NFC.String(name)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}
