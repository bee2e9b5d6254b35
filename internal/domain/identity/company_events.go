package identity

import (
	"github.com/payops/backend/internal/domain/shared"
)

// Aggregate type constant for Company
const AggregateTypeCompany = "Company"

// Company domain event types
const (
	EventTypeCompanyCreated = "CompanyCreated"
)

// CompanyCreatedEvent is published when a new company is onboarded.
// The company is its own tenant, so both identifiers carry the company ID.
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	Code   string        `json:"code"`
	Name   string        `json:"name"`
	Status CompanyStatus `json:"status"`
}

// NewCompanyCreatedEvent creates a new CompanyCreatedEvent
func NewCompanyCreatedEvent(company *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyCreated, AggregateTypeCompany, company.ID, company.ID),
		Code:            company.Code,
		Name:            company.Name,
		Status:          company.Status,
	}
}
