package handler

import (
	"time"

	"github.com/accesshub/identity-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	ID    string `json:"id,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---
// Body fields are domain.Field so that absent, null and wrongly typed values
// reach the validation layer intact.

type roleRequest struct {
	Name          domain.Field[string]   `json:"name"          swaggertype:"string"`
	AccessModules domain.Field[[]string] `json:"accessModules" swaggertype:"array,string"`
	Active        domain.Field[bool]     `json:"active"        swaggertype:"boolean"`
}

type userRequest struct {
	FirstName   domain.Field[string] `json:"firstName"   swaggertype:"string"`
	LastName    domain.Field[string] `json:"lastName"    swaggertype:"string"`
	Email       domain.Field[string] `json:"email"       swaggertype:"string"`
	Username    domain.Field[string] `json:"username"    swaggertype:"string"`
	Password    domain.Field[string] `json:"password"    swaggertype:"string"`
	PhoneNumber domain.Field[string] `json:"phoneNumber" swaggertype:"string"`
	Role        domain.Field[string] `json:"role"        swaggertype:"string"`
	Active      domain.Field[bool]   `json:"active"      swaggertype:"boolean"`
}

type loginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type listQuery struct {
	Search string `query:"search"`
	Page   string `query:"page"`
	Limit  string `query:"limit"`
	Active string `query:"active"`
}

type accessCheckRequest struct {
	UserID string `json:"userId" query:"userId"`
	Module string `json:"module" query:"module"`
}

// bulkFilterRequest ids are checked by the bulk service, which reports a
// malformed id together with the offending value.
type bulkFilterRequest struct {
	Search string   `json:"search"`
	Active *bool    `json:"active"`
	Role   string   `json:"role"`
	IDs    []string `json:"ids"`
}

type bulkSameRequest struct {
	Updates userRequest       `json:"updates"`
	Filter  bulkFilterRequest `json:"filter"`
}

type bulkItemRequest struct {
	UserID string      `json:"userId"`
	Data   userRequest `json:"data"`
}

type bulkDifferentRequest struct {
	Updates []bulkItemRequest `json:"updates"`
}

// --- Response types ---

type roleResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AccessModules []string  `json:"accessModules"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// roleSummary is the expanded role embedded in user responses.
type roleSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	AccessModules []string `json:"accessModules"`
}

type userResponse struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Email       string       `json:"email"`
	Username    string       `json:"username"`
	PhoneNumber string       `json:"phoneNumber,omitempty"`
	Role        *roleSummary `json:"role"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// accountResponse is returned with a session token; the role is not expanded.
type accountResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

type paginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type roleEnvelope struct {
	Message string       `json:"message"`
	Role    roleResponse `json:"role"`
}

type listRolesResponse struct {
	Roles      []roleResponse     `json:"roles"`
	Pagination paginationResponse `json:"pagination"`
}

type userEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    userResponse `json:"user"`
}

type sessionResponse struct {
	Message string          `json:"message"`
	User    accountResponse `json:"user"`
	Token   string          `json:"token"`
}

type listUsersResponse struct {
	Users      []userResponse     `json:"users"`
	Pagination paginationResponse `json:"pagination"`
}

type accessResponse struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	UserID    string `json:"userId"`
	Module    string `json:"module"`
	HasAccess bool   `json:"hasAccess"`
	Reason    string `json:"reason"`
}

type bulkResponse struct {
	Message       string `json:"message"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
}
