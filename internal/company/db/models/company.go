// Package models contains the persistence models for the company store,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	domain "github.com/coronavstech/companies/internal/company/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the companies table row. It uses a UUID primary key and a unique
// index on name; there is no soft delete.
type Company struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"size:30;not null;uniqueIndex"`
	Status          string    `gorm:"size:30;not null"`
	LastUpdate      time.Time `gorm:"not null"`
	ApplicationLink string    `gorm:"size:100;not null"`
	Notes           string    `gorm:"size:100;not null"`
}

func (Company) TableName() string {
	return "companies"
}

// BeforeCreate fills the storage-level defaults for omitted fields.
func (c *Company) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = string(domain.StatusHiring)
	}
	if c.LastUpdate.IsZero() {
		c.LastUpdate = time.Now().UTC()
	}
	return nil
}

// FromDomain converts a domain company into a row.
func FromDomain(c *domain.Company) *Company {
	return &Company{
		ID:              c.ID,
		Name:            c.Name,
		Status:          string(c.Status),
		LastUpdate:      c.LastUpdate,
		ApplicationLink: c.ApplicationLink,
		Notes:           c.Notes,
	}
}

// ToDomain converts the row back into a domain company.
func (c *Company) ToDomain() *domain.Company {
	return &domain.Company{
		ID:              c.ID,
		Name:            c.Name,
		Status:          domain.CompanyStatus(c.Status),
		LastUpdate:      c.LastUpdate,
		ApplicationLink: c.ApplicationLink,
		Notes:           c.Notes,
	}
}

// UpdateColumns maps the set fields of u to column values. Zero values are
// kept, so an update can clear notes or the application link.
func UpdateColumns(u *domain.CompanyUpdate) map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Status != nil {
		cols["status"] = string(*u.Status)
	}
	if u.LastUpdate != nil {
		cols["last_update"] = *u.LastUpdate
	}
	if u.ApplicationLink != nil {
		cols["application_link"] = *u.ApplicationLink
	}
	if u.Notes != nil {
		cols["notes"] = *u.Notes
	}
	return cols
}
