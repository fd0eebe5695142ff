package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus is the delivery state of a project
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on-hold"
)

// DefaultRenewalPrice is charged per year, in paise, when a project has no
// renewal price of its own.
const DefaultRenewalPrice int64 = 50000

// IsValid reports whether s is one of the known statuses
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

// Project is a customer (or personal) web project whose domain is renewed
// through paid renewals.
type Project struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string          `gorm:"not null" json:"title"`
	Description     string          `json:"description,omitempty"`
	CustomerID      *string         `gorm:"type:uuid;index" json:"-"`
	Customer        *Customer       `gorm:"foreignKey:CustomerID" json:"customer"`
	CreatedByID     string          `gorm:"type:uuid;index;not null" json:"-"`
	CreatedBy       *User           `gorm:"foreignKey:CreatedByID" json:"createdBy"`
	Status          ProjectStatus   `gorm:"type:varchar(20);not null" json:"status"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         *time.Time      `json:"endDate,omitempty"`
	Budget          *float64        `json:"budget,omitempty"`
	DomainName      string          `gorm:"index" json:"domainName,omitempty"`
	DomainStartDate *time.Time      `json:"domainStartDate"`
	DomainEndDate   *time.Time      `json:"domainEndDate"`
	IsActive        bool            `json:"isActive"`
	FilePath        *string         `json:"filePath"`
	RenewalPrice    int64           `json:"renewalPrice"`
	RenewalHistory  []RenewalRecord `gorm:"foreignKey:ProjectID" json:"renewalHistory"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when none was set
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// EffectiveRenewalPrice returns the per-year price, falling back to
// DefaultRenewalPrice when unset.
func (p *Project) EffectiveRenewalPrice() int64 {
	if p.RenewalPrice <= 0 {
		return DefaultRenewalPrice
	}
	return p.RenewalPrice
}

// HasPayment reports whether paymentID was already applied to this project
func (p *Project) HasPayment(paymentID string) bool {
	for _, r := range p.RenewalHistory {
		if r.PaymentID == paymentID {
			return true
		}
	}
	return false
}

// RenewalRecord is one paid renewal of a project. Records are append-only and
// the payment id is unique within a project.
type RenewalRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_renewal_project_payment" json:"-"`
	PaymentID   string    `gorm:"not null;uniqueIndex:idx_renewal_project_payment" json:"paymentId"`
	OrderID     string    `json:"orderId"`
	RenewedAt   time.Time `gorm:"not null" json:"renewedAt"`
	NewEndDate  time.Time `gorm:"not null" json:"newEndDate"`
	RenewedByID string    `gorm:"type:uuid;not null" json:"renewedBy"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Duration    int       `gorm:"not null" json:"duration"`
	CreatedAt   time.Time `json:"-"`
}
