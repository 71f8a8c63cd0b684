package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. Uniqueness is case-insensitive, mirroring the
// collation the Mongo indexes use.
// ---------------------------------------------------------------------------

var idSeq struct {
	sync.Mutex
	n int
}

func nextID() string {
	idSeq.Lock()
	defer idSeq.Unlock()
	idSeq.n++
	return fmt.Sprintf("%024x", idSeq.n)
}

type stubRoleRepo struct {
	mu      sync.Mutex
	roles   map[string]*domain.Role
	findErr error
	deletes int
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.Role)}
}

func cloneRole(r *domain.Role) *domain.Role {
	c := *r
	c.AccessModules = append([]string(nil), r.AccessModules...)
	return &c
}

func (r *stubRoleRepo) seed(name string, modules ...string) *domain.Role {
	role, _ := r.Create(context.Background(), &domain.Role{Name: name, AccessModules: modules, Active: true})
	return role
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles {
		if strings.EqualFold(existing.Name, role.Name) {
			return nil, domain.Duplicate(domain.FieldRoleName)
		}
	}
	c := cloneRole(role)
	c.ID = nextID()
	r.roles[c.ID] = c
	return cloneRole(c), nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return cloneRole(role), nil
}

func (r *stubRoleRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*domain.Role)
	for _, id := range ids {
		if role, ok := r.roles[id]; ok {
			out[id] = cloneRole(role)
		}
	}
	return out, nil
}

func (r *stubRoleRepo) List(_ context.Context, f ports.RoleFilter) ([]*domain.Role, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Role
	for _, role := range r.roles {
		if f.Search != "" && !strings.Contains(strings.ToLower(role.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Active != nil && role.Active != *f.Active {
			continue
		}
		matched = append(matched, cloneRole(role))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *stubRoleRepo) Update(_ context.Context, id string, ch domain.RoleChanges) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	if ch.Name != nil {
		role.Name = *ch.Name
	}
	if ch.AccessModules != nil {
		role.AccessModules = append([]string(nil), ch.AccessModules...)
	}
	if ch.Active != nil {
		role.Active = *ch.Active
	}
	return cloneRole(role), nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, id)
	r.deletes++
	return nil
}

func (r *stubRoleRepo) NameTaken(_ context.Context, name, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, role := range r.roles {
		if id != excludeID && strings.EqualFold(role.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

type stubUserRepo struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	updates     int
	bulkWrites  int
	manyWrites  int
	lastSel     ports.UserSelector
	findErr     error
	writeErr    error
	takenChecks []string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *stubUserRepo) seed(username, roleID string, active bool) *domain.User {
	u, _ := r.Create(context.Background(), &domain.User{
		FirstName:      "First",
		LastName:       "Last",
		Email:          username + "@example.com",
		Username:       username,
		PasswordDigest: "hashed:secret1",
		RoleID:         roleID,
		Active:         active,
	})
	return u
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.Duplicate(domain.FieldEmail)
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return nil, domain.Duplicate(domain.FieldUsername)
		}
	}
	c := cloneUser(u)
	c.ID = nextID()
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, login) || strings.EqualFold(u.Username, login) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.User
	for _, u := range r.users {
		if !matchesSelector(u, ports.UserSelector{Search: f.Search, Active: f.Active}) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, ch domain.UserChanges) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	r.updates++
	applyUserChanges(u, ch)
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, roleID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) FieldTaken(_ context.Context, field, value, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.takenChecks = append(r.takenChecks, field)
	for id, u := range r.users {
		if id == excludeID {
			continue
		}
		switch field {
		case domain.FieldEmail:
			if strings.EqualFold(u.Email, value) {
				return true, nil
			}
		case domain.FieldUsername:
			if strings.EqualFold(u.Username, value) {
				return true, nil
			}
		default:
			return false, errors.New("unsupported field " + field)
		}
	}
	return false, nil
}

func (r *stubUserRepo) UpdateMany(_ context.Context, sel ports.UserSelector, ch domain.UserChanges) (ports.BatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manyWrites++
	r.lastSel = sel
	if r.writeErr != nil {
		return ports.BatchResult{}, r.writeErr
	}
	var res ports.BatchResult
	for _, u := range r.users {
		if matchesSelector(u, sel) {
			res.Matched++
			res.Modified++
			applyUserChanges(u, ch)
		}
	}
	return res, nil
}

func (r *stubUserRepo) BulkUpdate(_ context.Context, ops []ports.UserUpdate) (ports.BatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bulkWrites++
	if r.writeErr != nil {
		return ports.BatchResult{}, r.writeErr
	}
	var res ports.BatchResult
	for _, op := range ops {
		if u, ok := r.users[op.ID]; ok {
			res.Matched++
			res.Modified++
			applyUserChanges(u, op.Changes)
		}
	}
	return res, nil
}

func (r *stubUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}

func matchesSelector(u *domain.User, sel ports.UserSelector) bool {
	if sel.Active != nil && u.Active != *sel.Active {
		return false
	}
	if sel.RoleID != "" && u.RoleID != sel.RoleID {
		return false
	}
	if len(sel.IDs) > 0 {
		found := false
		for _, id := range sel.IDs {
			if id == u.ID {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if sel.Search != "" {
		q := strings.ToLower(sel.Search)
		hay := strings.ToLower(strings.Join([]string{u.FirstName, u.LastName, u.Email, u.Username}, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func applyUserChanges(u *domain.User, ch domain.UserChanges) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.FirstName, ch.FirstName)
	set(&u.LastName, ch.LastName)
	set(&u.Email, ch.Email)
	set(&u.Username, ch.Username)
	set(&u.PasswordDigest, ch.PasswordDigest)
	set(&u.PhoneNumber, ch.PhoneNumber)
	set(&u.RoleID, ch.RoleID)
	if ch.Active != nil {
		u.Active = *ch.Active
	}
}

func page[T any](items []T, p, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (p - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

// ---------------------------------------------------------------------------
// Capability stubs
// ---------------------------------------------------------------------------

type stubHasher struct {
	mu     sync.Mutex
	hashes int
}

func (h *stubHasher) Hash(p string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return "hashed:" + p, nil
}

func (h *stubHasher) Verify(p, digest string) bool {
	return digest == "hashed:"+p
}

type stubTokens struct {
	issued []string
}

func (t *stubTokens) Issue(userID string) (string, error) {
	t.issued = append(t.issued, userID)
	return "token-" + userID, nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(ev domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

type stubRoleCache struct {
	roles       map[string]*domain.Role
	getErr      error
	setErr      error
	sets        int
	invalidated []string
}

func newStubRoleCache() *stubRoleCache {
	return &stubRoleCache{roles: make(map[string]*domain.Role)}
}

func (c *stubRoleCache) Get(_ context.Context, id string) (*domain.Role, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.roles[id]
	return r, ok, nil
}

func (c *stubRoleCache) Fill(_ context.Context, r *domain.Role) error {
	if _, ok := c.roles[r.ID]; !ok {
		c.roles[r.ID] = cloneRole(r)
	}
	return nil
}

func (c *stubRoleCache) Set(_ context.Context, r *domain.Role) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.roles[r.ID] = cloneRole(r)
	return nil
}

func (c *stubRoleCache) Invalidate(_ context.Context, id string) error {
	delete(c.roles, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}
