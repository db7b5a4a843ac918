package employee

import (
	"net/http"

	"github.com/anbusan19/nominal/internal/handler/respond"
	"github.com/anbusan19/nominal/internal/model/request"
	"github.com/anbusan19/nominal/internal/model/response/wrapper"
	"github.com/anbusan19/nominal/internal/service/organization"
	"github.com/anbusan19/nominal/pkg/apperr"
	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	srv *organization.Service
}

func NewEmployeeHandler(srv *organization.Service) *EmployeeHandler {
	return &EmployeeHandler{srv: srv}
}

// RegisterEmployee godoc
// @Summary Register an employee
// @Description Add an employee to an organization's payroll roster
// @Tags /api/v1/employees
// @Accept json
// @Produce json
// @Param employee body request.RegisterEmployee true "Employee object"
// @Success 201 {object} wrapper.ResponseWrapper{data=entity.Employee}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 409 {object} wrapper.ResponseWrapper
// @Failure 500 {object} wrapper.ErrorWrapper
// @Router /employees [post]
func (h *EmployeeHandler) RegisterEmployee(c *gin.Context) {
	var req request.RegisterEmployee
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	emp, err := h.srv.AddMember(c.Request.Context(), req.OrganizationName, req.WalletAddress, req.Label, req.DisplayName, req.Email)
	if err != nil {
		// A duplicate wallet returns the record that already holds it
		// so the caller can reconcile without a second lookup.
		if apperr.IsKind(err, apperr.KindConflict) && emp != nil {
			c.JSON(http.StatusConflict, wrapper.ResponseWrapper{Data: emp, Success: false})
			return
		}
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{Data: emp, Success: true})
}
