package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// User is a user catalog record.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	IsActive bool     `json:"isActive"`
}

// Role is a role catalog record.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"role_name"`
	Permissions []string `json:"permissions,omitempty"`
}

// Permission is a permission catalog record.
type Permission struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	AssignedRoles []string `json:"assignedRoles,omitempty"`
}

// Filter conditions supported by the backend's flat list endpoints.
const (
	CondContains    = "contains"
	CondNotContains = "notcontains"
	CondEquals      = "equals"
	CondNotEquals   = "notequals"
)

// ErrInvalidFilter indicates a malformed filter row.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterRow is one column predicate of a flat list filter.
type FilterRow struct {
	Column    string `json:"column"`
	Condition string `json:"condition"`
	Value     string `json:"value"`
}

// Validate checks the row before it is sent anywhere.
func (f FilterRow) Validate() error {
	if strings.TrimSpace(f.Column) == "" {
		return fmt.Errorf("%w: column is required", ErrInvalidFilter)
	}
	if strings.TrimSpace(f.Value) == "" {
		return fmt.Errorf("%w: value is required", ErrInvalidFilter)
	}
	switch f.Condition {
	case CondContains, CondNotContains, CondEquals, CondNotEquals:
		return nil
	default:
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidFilter, f.Condition)
	}
}

// ListQuery carries search, sort and pagination parameters for flat lists.
type ListQuery struct {
	Search    string `json:"search,omitempty"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
	Page      int    `json:"pageNumber"`
	PerPage   int    `json:"pageSize"`
}
