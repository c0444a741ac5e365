package handler

import (
	registryapp "github.com/finbook/backend/internal/application/registry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompanyHandler handles company registry API endpoints
type CompanyHandler struct {
	BaseHandler
	companyService *registryapp.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *registryapp.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Create godoc
// @Summary      Create a new company
// @Description  Register a company counterparty identified by its CNPJ
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body registryapp.CreateCompanyRequest true "Company creation request"
// @Success      201 {object} dto.Response{data=registryapp.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req registryapp.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, company)
}

// GetByID godoc
// @Summary      Get company by ID
// @Description  Retrieve a company by its ID
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Success      200 {object} dto.Response{data=registryapp.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	company, err := h.companyService.GetByID(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, company)
}

// GetByCNPJ godoc
// @Summary      Get company by CNPJ
// @Description  Retrieve a company by its CNPJ. Accepts formatted and bare digit strings.
// @Tags         companies
// @Produce      json
// @Param        cnpj path string true "Company CNPJ"
// @Success      200 {object} dto.Response{data=registryapp.CompanyResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/companies/by-cnpj/{cnpj} [get]
func (h *CompanyHandler) GetByCNPJ(c *gin.Context) {
	company, err := h.companyService.GetByCNPJ(c.Request.Context(), c.Param("cnpj"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, company)
}

// List godoc
// @Summary      List companies
// @Description  Retrieve a paginated list of registered companies
// @Tags         companies
// @Produce      json
// @Param        search query string false "Search in names and CNPJ"
// @Param        status query string false "Status filter" Enums(active, inactive)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]registryapp.CompanyResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var filter registryapp.CompanyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	companies, total, err := h.companyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, companies, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a company
// @Description  Update company details. The CNPJ itself never changes.
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Param        request body registryapp.UpdateCompanyRequest true "Company update request"
// @Success      200 {object} dto.Response{data=registryapp.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	var req registryapp.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, company)
}

// AddPartner godoc
// @Summary      Add a partner to a company
// @Description  Record a partner (socio) in the company's registration data
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Param        request body registryapp.AddPartnerRequest true "Partner details"
// @Success      200 {object} dto.Response{data=registryapp.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/companies/{id}/partners [post]
func (h *CompanyHandler) AddPartner(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	var req registryapp.AddPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	company, err := h.companyService.AddPartner(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, company)
}

// Delete godoc
// @Summary      Delete a company
// @Description  Delete a company that is not linked to any transaction
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	if err := h.companyService.Delete(c.Request.Context(), companyID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
