// Package registry holds the authoritative set of archive category names.
package registry

import (
	"strings"
	"sync"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

// Registry compares names case- and whitespace-insensitively while
// preserving the first-seen casing for storage and display. All access
// goes through LookupOrInsert / Names; the set is never mutated raw.
type Registry struct {
	mu        sync.Mutex
	canonical map[string]string
	order     []string
}

func New(seed []string) *Registry {
	r := &Registry{canonical: make(map[string]string)}
	for _, name := range seed {
		r.LookupOrInsert(name)
	}
	return r
}

// LookupOrInsert reconciles a proposed category against the known set.
// A match under the insensitive comparison returns the stored canonical
// name. No match registers the sanitized proposal. Proposals that are
// empty after sanitization, contain path separators, or collide with a
// reserved fallback name are substituted with the unclassified fallback.
func (r *Registry) LookupOrInsert(proposed string) (name string, added bool) {
	clean := Sanitize(proposed)
	if clean == "" || strings.ContainsAny(clean, `/\`) || domain.IsReservedCategory(clean) {
		return domain.CategoryUnclassified, false
	}

	key := strings.ToLower(clean)

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.canonical[key]; ok {
		return stored, false
	}
	r.canonical[key] = clean
	r.order = append(r.order, clean)
	return clean, true
}

// Names returns the known categories in insertion order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Sanitize trims a category name and collapses internal whitespace.
func Sanitize(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
