package domain

import "time"

// Role is a named bundle of access modules.
type Role struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AccessModules []string  `json:"accessModules"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Grants reports whether module is an exact, case-sensitive member of the
// role's access modules.
func (r *Role) Grants(module string) bool {
	if r == nil {
		return false
	}
	for _, m := range r.AccessModules {
		if m == module {
			return true
		}
	}
	return false
}

// RoleChanges is a validated partial role update. A nil AccessModules leaves
// the set untouched; an empty non-nil slice clears it.
type RoleChanges struct {
	Name          *string
	AccessModules []string
	Active        *bool
}

// DedupModules removes duplicates keeping the order of first appearance.
func DedupModules(modules []string) []string {
	seen := make(map[string]struct{}, len(modules))
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
