// Package models defines the core domain models for the Company entity.
// It includes definitions for Company, CompanyUpdate, CompanyInput and the
// CompanyStatus enumeration.
package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyStatus is the hiring status of a company.
type CompanyStatus string

const (
	// StatusHiring is the default status.
	StatusHiring       CompanyStatus = "Hiring"
	StatusHiringFreeze CompanyStatus = "Hiring Freeze"
	StatusLayoffs      CompanyStatus = "Layoffs"
)

// CompanyStatuses lists every accepted status in declaration order.
var CompanyStatuses = []CompanyStatus{StatusLayoffs, StatusHiringFreeze, StatusHiring}

// ParseCompanyStatus returns the status whose serialized form is exactly s.
func ParseCompanyStatus(s string) (CompanyStatus, bool) {
	for _, st := range CompanyStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s CompanyStatus) Valid() bool {
	_, ok := ParseCompanyStatus(string(s))
	return ok
}

// Field limits shared by validation and the storage schema.
const (
	MaxNameLength            = 30
	MaxApplicationLinkLength = 100
	MaxNotesLength           = 100
)

// Company defines the domain model for a company entity.
type Company struct {
	// ID is the unique identifier for the company.
	ID uuid.UUID `json:"id"`
	// Name is the company's name, unique across all companies.
	Name string `json:"name"`
	// Status is the company's current hiring status.
	Status CompanyStatus `json:"status"`
	// LastUpdate records when the status was last reported.
	LastUpdate time.Time `json:"last_update"`
	// ApplicationLink points to the company's careers page.
	ApplicationLink string `json:"application_link"`
	// Notes is free text about the company.
	Notes string `json:"notes"`
}

// NewCompany builds a Company with default values for everything but the name.
// LastUpdate is taken from now so that no two records share a stale default.
func NewCompany(name string, now time.Time) *Company {
	return &Company{
		Name:       name,
		Status:     StatusHiring,
		LastUpdate: now,
	}
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Pointer types are used to allow partial updates.
type CompanyUpdate struct {
	// ID is the unique identifier for the company to update.
	ID uuid.UUID
	// Name is the new name for the company.
	Name *string
	// Status is the new hiring status.
	Status *CompanyStatus
	// LastUpdate is the new status timestamp.
	LastUpdate *time.Time
	// ApplicationLink is the new careers link.
	ApplicationLink *string
	// Notes is the new free text.
	Notes *string
}

// Empty reports whether the update changes nothing.
func (u *CompanyUpdate) Empty() bool {
	return u.Name == nil && u.Status == nil && u.LastUpdate == nil &&
		u.ApplicationLink == nil && u.Notes == nil
}

// Apply copies every set field of u onto c.
func (u *CompanyUpdate) Apply(c *Company) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.LastUpdate != nil {
		c.LastUpdate = *u.LastUpdate
	}
	if u.ApplicationLink != nil {
		c.ApplicationLink = *u.ApplicationLink
	}
	if u.Notes != nil {
		c.Notes = *u.Notes
	}
}

// Request field names, as they appear in JSON bodies and error maps.
const (
	FieldName            = "name"
	FieldStatus          = "status"
	FieldLastUpdate      = "last_update"
	FieldApplicationLink = "application_link"
	FieldNotes           = "notes"
)

// CompanyInput carries the raw, unvalidated fields of a create or update
// request. A nil pointer means the field was absent.
type CompanyInput struct {
	Name            *string
	Status          *string
	LastUpdate      *string
	ApplicationLink *string
	Notes           *string

	// Rejected holds fields the transport could not read as text (null or
	// non-string values), keyed by field name with the message to report.
	Rejected map[string]string
}

// Reject records a transport-level problem with field.
func (in *CompanyInput) Reject(field, msg string) {
	if in.Rejected == nil {
		in.Rejected = make(map[string]string)
	}
	in.Rejected[field] = msg
}
