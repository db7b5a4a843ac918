package organization

import (
	"net/http"

	"github.com/anbusan19/nominal/internal/handler/respond"
	"github.com/anbusan19/nominal/internal/model/request"
	"github.com/anbusan19/nominal/internal/model/response/wrapper"
	"github.com/anbusan19/nominal/internal/service/organization"
	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	srv *organization.Service
}

func NewOrganizationHandler(srv *organization.Service) *OrganizationHandler {
	return &OrganizationHandler{srv: srv}
}

// CreateOrganization godoc
// @Summary Register an organization
// @Description Register an organization under its claimed .eth name
// @Tags /api/v1/organizations
// @Accept json
// @Produce json
// @Param organization body request.RegisterOrganization true "Organization object"
// @Success 201 {object} wrapper.ResponseWrapper{data=entity.Organization}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 409 {object} wrapper.ErrorWrapper
// @Failure 500 {object} wrapper.ErrorWrapper
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req request.RegisterOrganization
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	org, err := h.srv.CreateOrganization(c.Request.Context(), req.Name, req.OwnerAddress)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{Data: org, Success: true})
}

// GetEmployees godoc
// @Summary Get organization with employees
// @Description Get an organization and its full employee roster by name
// @Tags /api/v1/organizations
// @Accept json
// @Produce json
// @Param organizationName query string true "Organization ENS name"
// @Success 200 {object} wrapper.ResponseWrapper{data=entity.Organization}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 500 {object} wrapper.ErrorWrapper
// @Router /organizations/employees [get]
func (h *OrganizationHandler) GetEmployees(c *gin.Context) {
	name := c.Query("organizationName")
	if name == "" {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "organizationName query parameter is required", Success: false})
		return
	}

	org, err := h.srv.GetWithEmployees(c.Request.Context(), name)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: org, Success: true})
}

// GetByOwner godoc
// @Summary Get organization by owner
// @Description Look up the organization registered to a wallet address
// @Tags /api/v1/organizations
// @Accept json
// @Produce json
// @Param ownerAddress query string true "Owner wallet address"
// @Success 200 {object} wrapper.ResponseWrapper{data=entity.Organization}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 500 {object} wrapper.ErrorWrapper
// @Router /organizations/by-owner [get]
func (h *OrganizationHandler) GetByOwner(c *gin.Context) {
	owner := c.Query("ownerAddress")
	if owner == "" {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "ownerAddress query parameter is required", Success: false})
		return
	}

	org, err := h.srv.GetByOwner(c.Request.Context(), owner)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: org, Success: true})
}
