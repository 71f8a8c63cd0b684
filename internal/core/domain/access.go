package domain

// AccessReason explains an access decision.
type AccessReason string

const (
	ReasonGranted         AccessReason = "granted"
	ReasonInactiveAccount AccessReason = "inactive-account"
	ReasonNoAccess        AccessReason = "no-access"
)

// AccessDecision is the outcome of a module access check.
type AccessDecision struct {
	UserID  string       `json:"userId"`
	Module  string       `json:"module"`
	Allowed bool         `json:"hasAccess"`
	Reason  AccessReason `json:"reason"`
}
