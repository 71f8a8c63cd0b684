// Package validation holds the pure, store-free checks applied to every
// identity payload before a mutation is attempted. Each check returns the
// first failure in a fixed field order so results are reproducible.
package validation

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validator returns the shared instance with the objectid tag registered and
// field errors named after their JSON keys.
func Validator() *validator.Validate {
	return validate
}

// IsID reports whether id has the store's identifier format.
func IsID(id string) bool {
	return validate.Var(id, "required,objectid") == nil
}

// ID checks a record identifier taken from a path, query or batch element.
func ID(entity, id string) error {
	if !IsID(id) {
		return domain.BadID(domain.FieldID, "invalid "+entity+" ID format")
	}
	return nil
}

// Module checks the module name of an access check.
func Module(module string) error {
	if strings.TrimSpace(module) == "" {
		return domain.BadInput(domain.FieldModule, "module must be a non-empty string")
	}
	return nil
}

type check func() error

func first(checks ...check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// requiredText enforces presence, string type and non-blank content.
func requiredText(name string, f domain.Field[string]) check {
	return func() error {
		if !f.Present() {
			return domain.BadInput(name, name+" is required")
		}
		if f.Invalid {
			return domain.BadInput(name, name+" must be a string")
		}
		if validate.Var(strings.TrimSpace(f.Value), "required") != nil {
			return domain.BadInput(name, name+" is required")
		}
		return nil
	}
}

// optionalText validates a field only when it was sent with a value.
func optionalText(name string, f domain.Field[string]) check {
	return func() error {
		if !f.Present() {
			return nil
		}
		if f.Invalid {
			return domain.BadInput(name, name+" must be a string")
		}
		if strings.TrimSpace(f.Value) == "" {
			return domain.BadInput(name, name+" must not be empty")
		}
		return nil
	}
}

func password(required bool, f domain.Field[string]) check {
	return func() error {
		if !f.Present() {
			if required {
				return domain.BadInput(domain.FieldPassword, "password is required")
			}
			return nil
		}
		if f.Invalid {
			return domain.BadInput(domain.FieldPassword, "password must be a string")
		}
		if validate.Var(f.Value, "min="+strconv.Itoa(domain.MinPasswordLength)) != nil {
			return domain.BadInput(domain.FieldPassword, "password must be at least 6 characters")
		}
		return nil
	}
}

func phone(f domain.Field[string]) check {
	return func() error {
		if f.Present() && f.Invalid {
			return domain.BadInput(domain.FieldPhoneNumber, "phoneNumber must be a string")
		}
		return nil
	}
}

func roleRef(required bool, f domain.Field[string]) check {
	return func() error {
		if !f.Present() {
			if required {
				return domain.BadInput(domain.FieldRole, "role is required")
			}
			return nil
		}
		if f.Invalid {
			return domain.BadInput(domain.FieldRole, "role must be a string")
		}
		if !IsID(f.Value) {
			return domain.BadInput(domain.FieldRole, "invalid role ID format")
		}
		return nil
	}
}

func boolean(name string, f domain.Field[bool]) check {
	return func() error {
		if f.Present() && f.Invalid {
			return domain.BadInput(name, name+" must be a boolean")
		}
		return nil
	}
}

// Signup validates a new account. Active is accepted for type only; new
// accounts always start active.
func Signup(in ports.UserInput) error {
	return first(
		requiredText(domain.FieldFirstName, in.FirstName),
		requiredText(domain.FieldLastName, in.LastName),
		requiredText(domain.FieldEmail, in.Email),
		requiredText(domain.FieldUsername, in.Username),
		password(true, in.Password),
		phone(in.PhoneNumber),
		roleRef(true, in.Role),
		boolean(domain.FieldActive, in.Active),
	)
}

// UserUpdate validates the fields present in a partial user update.
func UserUpdate(in ports.UserInput) error {
	return first(
		optionalText(domain.FieldFirstName, in.FirstName),
		optionalText(domain.FieldLastName, in.LastName),
		optionalText(domain.FieldEmail, in.Email),
		optionalText(domain.FieldUsername, in.Username),
		password(false, in.Password),
		phone(in.PhoneNumber),
		roleRef(false, in.Role),
		boolean(domain.FieldActive, in.Active),
	)
}

// HasUserFields reports whether any field carries a value. A phoneNumber sent
// as null counts, since it clears the stored number.
func HasUserFields(in ports.UserInput) bool {
	return in.FirstName.Present() || in.LastName.Present() || in.Email.Present() ||
		in.Username.Present() || in.Password.Present() || in.PhoneNumber.Set ||
		in.Role.Present() || in.Active.Present()
}

// SameUpdate validates the payload of a homogeneous batch. Email and username
// are refused before anything else: one value applied to many users always
// breaks uniqueness.
func SameUpdate(in ports.UserInput) error {
	if !HasUserFields(in) {
		return domain.BadInput("updates", "updates object is required")
	}
	if in.Email.Present() {
		return domain.BadInput(domain.FieldEmail, "email or username updates are not allowed in a bulk update")
	}
	if in.Username.Present() {
		return domain.BadInput(domain.FieldUsername, "email or username updates are not allowed in a bulk update")
	}
	return UserUpdate(in)
}

func accessModules(f domain.Field[[]string]) check {
	return func() error {
		if !f.Present() {
			return nil
		}
		if f.Invalid {
			return domain.BadInput(domain.FieldAccessModules, "accessModules must be an array of strings")
		}
		for _, m := range f.Value {
			if strings.TrimSpace(m) == "" {
				return domain.BadInput(domain.FieldAccessModules, "accessModules entries must be non-empty strings")
			}
		}
		return nil
	}
}

// RoleCreate validates a new role.
func RoleCreate(in ports.RoleInput) error {
	return first(
		requiredText(domain.FieldRoleName, in.Name),
		accessModules(in.AccessModules),
		boolean(domain.FieldActive, in.Active),
	)
}

// RoleUpdate validates a partial role update. Active is an independent
// optional boolean.
func RoleUpdate(in ports.RoleInput) error {
	return first(
		optionalText(domain.FieldRoleName, in.Name),
		accessModules(in.AccessModules),
		boolean(domain.FieldActive, in.Active),
	)
}

// ListParams parses raw pagination and active-filter query values. Empty
// values fall back to defaults; limit is capped at MaxLimit. A page whose
// offset (page-1)*limit does not fit in an int64 is rejected.
func ListParams(search, page, limit, active string) (ports.ListInput, error) {
	in := ports.ListInput{Search: strings.TrimSpace(search), Page: DefaultPage, Limit: DefaultLimit}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || validate.Var(n, "min=1") != nil {
			return ports.ListInput{}, domain.BadInput("page", "page and limit must be positive integers")
		}
		in.Page = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || validate.Var(n, "min=1") != nil {
			return ports.ListInput{}, domain.BadInput("limit", "page and limit must be positive integers")
		}
		in.Limit = min(n, MaxLimit)
	}
	if int64(in.Page-1) > math.MaxInt64/int64(in.Limit) {
		return ports.ListInput{}, domain.BadInput("page", "page is too large")
	}
	if active != "" {
		b, err := strconv.ParseBool(active)
		if err != nil {
			return ports.ListInput{}, domain.BadInput(domain.FieldActive, "active must be true or false")
		}
		in.Active = &b
	}
	return in, nil
}
