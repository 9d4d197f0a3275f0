package partition

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

const (
	DefaultPrefix   = "recipe_"
	DefaultSentinel = "uncategorized"

	// MaxNameLength is the longest identifier postgres stores without
	// truncating it.
	MaxNameLength = 63
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Namer maps category labels to partition names and back. It is the only
// place partition names are built.
type Namer struct {
	prefix   string
	sentinel string
}

// NewNamer creates a Namer. Empty arguments fall back to the defaults.
func NewNamer(prefix, sentinel string) Namer {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if strings.TrimSpace(sentinel) == "" {
		sentinel = DefaultSentinel
	}

	return Namer{prefix: strings.ToLower(prefix), sentinel: strings.TrimSpace(sentinel)}
}

// Prefix returns the namespace prefix shared by every partition.
func (n Namer) Prefix() string {
	return n.prefix
}

// Sentinel returns the label used when a recipe has no category.
func (n Namer) Sentinel() string {
	return n.sentinel
}

// Label returns the category label a recipe is stored under: the input
// itself, or the sentinel when the input is blank.
func (n Namer) Label(category string) string {
	if strings.TrimSpace(category) == "" {
		return n.sentinel
	}
	return category
}

// Name returns the canonical partition name of a category.
// "Main  Course" and "main course" both become "recipe_main_course".
// A name that is already canonical is returned unchanged.
func (n Namer) Name(category string) string {
	formatted := whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(n.Label(category))), "_")
	if strings.HasPrefix(formatted, n.prefix) {
		return fit(formatted)
	}
	return fit(n.prefix + formatted)
}

// fit shortens a name longer than MaxNameLength bytes, replacing its tail
// with a hash of the whole name so that long names sharing a head stay apart.
func fit(name string) string {
	if len(name) <= MaxNameLength {
		return name
	}

	suffix := fmt.Sprintf("_%016x", xxhash.Sum64String(name))
	cut := MaxNameLength - len(suffix)
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut] + suffix
}

// Category strips the prefix from a partition name.
func (n Namer) Category(partition string) string {
	return strings.TrimPrefix(partition, n.prefix)
}

// IsPartition reports whether a table name belongs to the partition namespace.
func (n Namer) IsPartition(name string) bool {
	return strings.HasPrefix(name, n.prefix) && len(name) > len(n.prefix)
}

// IsSentinel reports whether the partition is the one holding uncategorized
// recipes. The sentinel partition is never dropped automatically.
func (n Namer) IsSentinel(partition string) bool {
	return strings.EqualFold(partition, n.Name(n.sentinel))
}
