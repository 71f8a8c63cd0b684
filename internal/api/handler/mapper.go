package handler

import (
	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

// --- Request → Service input ---

func toRoleInput(r roleRequest) ports.RoleInput {
	return ports.RoleInput{
		Name:          r.Name,
		AccessModules: r.AccessModules,
		Active:        r.Active,
	}
}

func toUserInput(r userRequest) ports.UserInput {
	return ports.UserInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Username:    r.Username,
		Password:    r.Password,
		PhoneNumber: r.PhoneNumber,
		Role:        r.Role,
		Active:      r.Active,
	}
}

func toSelector(f bulkFilterRequest) ports.UserSelector {
	return ports.UserSelector{
		Search: f.Search,
		Active: f.Active,
		RoleID: f.Role,
		IDs:    f.IDs,
	}
}

func toBulkItems(items []bulkItemRequest) []ports.BulkUpdateItem {
	out := make([]ports.BulkUpdateItem, 0, len(items))
	for _, it := range items {
		out = append(out, ports.BulkUpdateItem{UserID: it.UserID, Data: toUserInput(it.Data)})
	}
	return out
}

// --- Service result → HTTP response ---

func toRoleResponse(r *domain.Role) roleResponse {
	modules := r.AccessModules
	if modules == nil {
		modules = []string{}
	}
	return roleResponse{
		ID:            r.ID,
		Name:          r.Name,
		AccessModules: modules,
		Active:        r.Active,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func toUserResponse(d ports.UserDetail) userResponse {
	u := d.User
	resp := userResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Username:    u.Username,
		PhoneNumber: u.PhoneNumber,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt.UTC(),
		UpdatedAt:   u.UpdatedAt.UTC(),
	}
	if d.Role != nil {
		modules := d.Role.AccessModules
		if modules == nil {
			modules = []string{}
		}
		resp.Role = &roleSummary{ID: d.Role.ID, Name: d.Role.Name, AccessModules: modules}
	}
	return resp
}

func toAccountResponse(u *domain.User) accountResponse {
	return accountResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Username:    u.Username,
		PhoneNumber: u.PhoneNumber,
		Role:        u.RoleID,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt.UTC(),
	}
}

func toPagination(p ports.Pagination) paginationResponse {
	return paginationResponse{Page: p.Page, Limit: p.Limit, Total: p.Total, Pages: p.Pages}
}
