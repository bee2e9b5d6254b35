package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/payops/backend/internal/application/identity"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// CompanyHandler handles company tenant HTTP requests
type CompanyHandler struct {
	BaseHandler
	companyService *identity.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *identity.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

// RegisterCompanyRequest represents the request body for company onboarding
// @Name HandlerRegisterCompanyRequest
type RegisterCompanyRequest struct {
	Code          string `json:"code" binding:"required,min=2,max=50,alphanum"`
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactName   string `json:"contact_name" binding:"omitempty,max=100"`
	ContactEmail  string `json:"contact_email" binding:"omitempty,email,max=200"`
	AdminUsername string `json:"admin_username" binding:"required,min=3,max=100"`
	AdminPassword string `json:"admin_password" binding:"required,min=8,max=128"`
	AdminEmail    string `json:"admin_email" binding:"omitempty,email,max=200"`
}

// UpdateCompanyRequest represents the request body for updating company details
// @Name HandlerUpdateCompanyRequest
type UpdateCompanyRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	ShortName    *string `json:"short_name" binding:"omitempty,max=100"`
	ContactName  *string `json:"contact_name" binding:"omitempty,max=100"`
	ContactPhone *string `json:"contact_phone" binding:"omitempty,max=50"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email,max=200"`
	Address      *string `json:"address" binding:"omitempty,max=500"`
}

// UpdateCompanyConfigRequest represents the request body for payroll settings
// @Name HandlerUpdateCompanyConfigRequest
type UpdateCompanyConfigRequest struct {
	Currency         *string `json:"currency" binding:"omitempty,len=3"`
	Timezone         *string `json:"timezone" binding:"omitempty,max=64"`
	Locale           *string `json:"locale" binding:"omitempty,max=16"`
	ShiftStartHour   *int    `json:"shift_start_hour" binding:"omitempty,gte=0,lte=23"`
	ShiftStartMinute *int    `json:"shift_start_minute" binding:"omitempty,gte=0,lte=59"`
	GraceMinutes     *int    `json:"grace_minutes" binding:"omitempty,gte=0,lte=240"`
}

// CompanyResponse represents a company in API responses
// @Name HandlerCompanyResponse
type CompanyResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	ShortName    string    `json:"short_name,omitempty"`
	Status       string    `json:"status"`
	ContactName  string    `json:"contact_name,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Address      string    `json:"address,omitempty"`
	Currency     string    `json:"currency"`
	Timezone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterCompanyResponse represents the result of company onboarding
// @Name HandlerRegisterCompanyResponse
type RegisterCompanyResponse struct {
	Company CompanyResponse `json:"company"`
	AdminID uuid.UUID       `json:"admin_id"`
}

func toCompanyResponse(info *identity.CompanyInfo) CompanyResponse {
	return CompanyResponse{
		ID:           info.ID,
		Code:         info.Code,
		Name:         info.Name,
		ShortName:    info.ShortName,
		Status:       info.Status,
		ContactName:  info.ContactName,
		ContactPhone: info.ContactPhone,
		ContactEmail: info.ContactEmail,
		Address:      info.Address,
		Currency:     info.Currency,
		Timezone:     info.Timezone,
		CreatedAt:    info.CreatedAt,
	}
}

// Register godoc
// @ID           registerCompany
// @Summary      Register a new company
// @Description  Onboard a new company tenant with its first administrator
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body RegisterCompanyRequest true "Company registration request"
// @Success      201 {object} APIResponse[RegisterCompanyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /companies/register [post]
func (h *CompanyHandler) Register(c *gin.Context) {
	var req RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.companyService.Register(c.Request.Context(), identity.RegisterCompanyInput{
		Code:          req.Code,
		Name:          req.Name,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		AdminUsername: req.AdminUsername,
		AdminPassword: req.AdminPassword,
		AdminEmail:    req.AdminEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, RegisterCompanyResponse{
		Company: toCompanyResponse(&result.Company),
		AdminID: result.AdminID,
	})
}

// GetCurrent godoc
// @ID           getCurrentCompany
// @Summary      Get the current company
// @Description  Retrieve the company the authenticated user belongs to
// @Tags         companies
// @Produce      json
// @Success      200 {object} APIResponse[CompanyResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/current [get]
func (h *CompanyHandler) GetCurrent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	company, err := h.companyService.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCompanyResponse(company))
}

// GetConfig godoc
// @ID           getCompanyConfig
// @Summary      Get company payroll settings
// @Description  Retrieve the payroll configuration of the current company
// @Tags         companies
// @Produce      json
// @Success      200 {object} APIResponse[identity.CompanyConfig]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/current/config [get]
func (h *CompanyHandler) GetConfig(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	cfg, err := h.companyService.GetConfig(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cfg)
}

// Update godoc
// @ID           updateCompany
// @Summary      Update the current company
// @Description  Update the company's contact and display details
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body UpdateCompanyRequest true "Company update request"
// @Success      200 {object} APIResponse[CompanyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/current [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), tenantID, identity.UpdateCompanyInput{
		Name:         req.Name,
		ShortName:    req.ShortName,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Address:      req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCompanyResponse(company))
}

// UpdateConfig godoc
// @ID           updateCompanyConfig
// @Summary      Update company payroll settings
// @Description  Update the payroll configuration of the current company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body UpdateCompanyConfigRequest true "Config update request"
// @Success      200 {object} APIResponse[CompanyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/current/config [put]
func (h *CompanyHandler) UpdateConfig(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateCompanyConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	company, err := h.companyService.UpdateConfig(c.Request.Context(), tenantID, identity.UpdateCompanyConfigInput{
		Currency:         req.Currency,
		Timezone:         req.Timezone,
		Locale:           req.Locale,
		ShiftStartHour:   req.ShiftStartHour,
		ShiftStartMinute: req.ShiftStartMinute,
		GraceMinutes:     req.GraceMinutes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCompanyResponse(company))
}
