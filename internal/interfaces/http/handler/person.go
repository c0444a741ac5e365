package handler

import (
	registryapp "github.com/finbook/backend/internal/application/registry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PersonHandler handles person registry API endpoints
type PersonHandler struct {
	BaseHandler
	personService *registryapp.PersonService
}

// NewPersonHandler creates a new PersonHandler
func NewPersonHandler(personService *registryapp.PersonService) *PersonHandler {
	return &PersonHandler{personService: personService}
}

// Create godoc
// @Summary      Create a new person
// @Description  Register an individual counterparty identified by their CPF
// @Tags         persons
// @Accept       json
// @Produce      json
// @Param        request body registryapp.CreatePersonRequest true "Person creation request"
// @Success      201 {object} dto.Response{data=registryapp.PersonResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/persons [post]
func (h *PersonHandler) Create(c *gin.Context) {
	var req registryapp.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	person, err := h.personService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, person)
}

// GetByID godoc
// @Summary      Get person by ID
// @Description  Retrieve a person by their ID
// @Tags         persons
// @Produce      json
// @Param        id path string true "Person ID" format(uuid)
// @Success      200 {object} dto.Response{data=registryapp.PersonResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/persons/{id} [get]
func (h *PersonHandler) GetByID(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid person ID format")
		return
	}

	person, err := h.personService.GetByID(c.Request.Context(), personID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, person)
}

// List godoc
// @Summary      List persons
// @Description  Retrieve a paginated list of registered persons, anonymized entries included
// @Tags         persons
// @Produce      json
// @Param        search query string false "Search in names and CPF"
// @Param        status query string false "Status filter" Enums(active, anonymous)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]registryapp.PersonResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/persons [get]
func (h *PersonHandler) List(c *gin.Context) {
	var filter registryapp.PersonListFilter
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

	persons, total, err := h.personService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, persons, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a person
// @Description  Update person details. The CPF itself never changes. Anonymized persons cannot be edited.
// @Tags         persons
// @Accept       json
// @Produce      json
// @Param        id path string true "Person ID" format(uuid)
// @Param        request body registryapp.UpdatePersonRequest true "Person update request"
// @Success      200 {object} dto.Response{data=registryapp.PersonResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/persons/{id} [put]
func (h *PersonHandler) Update(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid person ID format")
		return
	}

	var req registryapp.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	person, err := h.personService.Update(c.Request.Context(), personID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, person)
}

// Delete godoc
// @Summary      Delete a person
// @Description  Delete a person that is not linked to any transaction
// @Tags         persons
// @Produce      json
// @Param        id path string true "Person ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registry/persons/{id} [delete]
func (h *PersonHandler) Delete(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid person ID format")
		return
	}

	if err := h.personService.Delete(c.Request.Context(), personID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
