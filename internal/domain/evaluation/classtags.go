package evaluation

import (
	"sort"
	"strings"
)

// ClassTags is a parsed employee class field. An empty set means the
// record is unassigned.
type ClassTags map[string]struct{}

// ParseClassTags splits a stored class field into tags. Blank entries are
// dropped and the unassigned sentinel yields an empty set.
func ParseClassTags(raw string) ClassTags {
	tags := ClassTags{}
	for _, part := range strings.Split(raw, ClassSeparator) {
		tag := strings.TrimSpace(part)
		if tag == "" || strings.EqualFold(tag, UnassignedClass) {
			continue
		}
		tags[tag] = struct{}{}
	}
	return tags
}

func NewClassTags(tags ...string) ClassTags {
	return ParseClassTags(strings.Join(tags, ClassSeparator))
}

func (c ClassTags) Unassigned() bool {
	return len(c) == 0
}

func (c ClassTags) Contains(tag string) bool {
	_, ok := c[tag]
	return ok
}

// Intersects reports whether the two sets share an exact tag.
func (c ClassTags) Intersects(other ClassTags) bool {
	small, large := c, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for tag := range small {
		if large.Contains(tag) {
			return true
		}
	}
	return false
}

// Sorted returns the tags in lexical order.
func (c ClassTags) Sorted() []string {
	out := make([]string, 0, len(c))
	for tag := range c {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// String renders the storage form, using the sentinel for an empty set.
func (c ClassTags) String() string {
	if c.Unassigned() {
		return UnassignedClass
	}
	return strings.Join(c.Sorted(), ClassSeparator)
}
