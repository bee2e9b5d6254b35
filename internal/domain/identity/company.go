package identity

import (
	"strings"
	"time"

	"github.com/payops/backend/internal/domain/shared"
)

// CompanyStatus represents the status of a company
type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusInactive  CompanyStatus = "inactive"
	CompanyStatusSuspended CompanyStatus = "suspended" // Suspended due to contract/compliance issues
)

// CompanyConfig holds configurable payroll settings for a company
type CompanyConfig struct {
	Currency         string `json:"currency"`           // Payroll currency code
	Timezone         string `json:"timezone"`           // Company timezone for attendance days
	Locale           string `json:"locale"`             // Locale for slip rendering
	ShiftStartHour   int    `json:"shift_start_hour"`   // Working day start hour
	ShiftStartMinute int    `json:"shift_start_minute"` // Working day start minute
	GraceMinutes     int    `json:"grace_minutes"`      // Lateness tolerated before a check-in is late
}

// DefaultCompanyConfig returns the default configuration for a new company
func DefaultCompanyConfig() CompanyConfig {
	return CompanyConfig{
		Currency:         "INR",
		Timezone:         "Asia/Kolkata",
		Locale:           "en-IN",
		ShiftStartHour:   9,
		ShiftStartMinute: 30,
		GraceMinutes:     10,
	}
}

// Company represents an employer organization in the multi-tenant system.
// Its ID is the tenant ID every other aggregate is scoped by.
type Company struct {
	shared.BaseAggregateRoot
	Code         string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string        `gorm:"type:varchar(200);not null"`
	ShortName    string        `gorm:"type:varchar(100)"`
	Status       CompanyStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName  string        `gorm:"type:varchar(100)"`
	ContactPhone string        `gorm:"type:varchar(50)"`
	ContactEmail string        `gorm:"type:varchar(200)"`
	Address      string        `gorm:"type:text"`
	Config       CompanyConfig `gorm:"embedded;embeddedPrefix:config_"`
	Notes        string        `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new company with required fields
func NewCompany(code, name string) (*Company, error) {
	if err := validateCompanyCode(code); err != nil {
		return nil, err
	}
	if err := validateCompanyName(name); err != nil {
		return nil, err
	}

	company := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Name:              strings.TrimSpace(name),
		Status:            CompanyStatusActive,
		Config:            DefaultCompanyConfig(),
	}

	company.AddDomainEvent(NewCompanyCreatedEvent(company))

	return company, nil
}

// Update updates the company's basic information
func (c *Company) Update(name, shortName string) error {
	if err := validateCompanyName(name); err != nil {
		return err
	}
	if shortName != "" && len(shortName) > 100 {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Short name cannot exceed 100 characters")
	}

	c.Name = strings.TrimSpace(name)
	c.ShortName = strings.TrimSpace(shortName)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetContact sets the company's contact information
func (c *Company) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	c.ContactName = contactName
	c.ContactPhone = phone
	c.ContactEmail = email
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetAddress sets the company's address
func (c *Company) SetAddress(address string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// UpdateConfig replaces the company's payroll configuration
func (c *Company) UpdateConfig(config CompanyConfig) error {
	if config.Currency == "" {
		return shared.NewDomainError("INVALID_CONFIG", "Currency cannot be empty")
	}
	if config.ShiftStartHour < 0 || config.ShiftStartHour > 23 {
		return shared.NewDomainError("INVALID_CONFIG", "Shift start hour must be between 0 and 23")
	}
	if config.ShiftStartMinute < 0 || config.ShiftStartMinute > 59 {
		return shared.NewDomainError("INVALID_CONFIG", "Shift start minute must be between 0 and 59")
	}
	if config.GraceMinutes < 0 {
		return shared.NewDomainError("INVALID_CONFIG", "Grace minutes cannot be negative")
	}

	c.Config = config
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate activates the company
func (c *Company) Activate() error {
	if c.Status == CompanyStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Company is already active")
	}

	c.Status = CompanyStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Suspend suspends the company, blocking all payroll operations
func (c *Company) Suspend() error {
	if c.Status == CompanyStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Company is already suspended")
	}

	c.Status = CompanyStatusSuspended
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate deactivates the company
func (c *Company) Deactivate() error {
	if c.Status == CompanyStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Company is already inactive")
	}

	c.Status = CompanyStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// IsActive returns true if the company is active
func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}

// CanOperate returns true if payroll operations are allowed
func (c *Company) CanOperate() bool {
	return c.Status == CompanyStatusActive
}

// Validation functions

func validateCompanyCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_COMPANY_CODE", "Company code cannot be empty")
	}
	if len(code) < 2 {
		return shared.NewDomainError("INVALID_COMPANY_CODE", "Company code must be at least 2 characters")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_COMPANY_CODE", "Company code cannot exceed 50 characters")
	}
	return nil
}

func validateCompanyName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot exceed 200 characters")
	}
	return nil
}
