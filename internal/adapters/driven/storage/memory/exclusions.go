package memory

import (
	"strings"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure ExclusionList implements the interface.
var _ driven.ExclusionList = (*ExclusionList)(nil)

// ExclusionList is a read-only set of already-known pathways, matched by
// canonical id or name, case-insensitively.
type ExclusionList struct {
	entries map[string]struct{}
}

// NewExclusionList creates an exclusion list from ids and names.
func NewExclusionList(entries []string) *ExclusionList {
	l := &ExclusionList{entries: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			l.entries[e] = struct{}{}
		}
	}
	return l
}

// IsExcluded reports whether the pathway is already known.
func (l *ExclusionList) IsExcluded(p domain.PathwayRecord) bool {
	if _, ok := l.entries[strings.ToLower(p.CanonicalID())]; ok {
		return true
	}
	_, ok := l.entries[strings.ToLower(p.Name)]
	return ok
}

// Len returns the number of entries.
func (l *ExclusionList) Len() int {
	return len(l.entries)
}
