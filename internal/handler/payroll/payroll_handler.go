package payroll

import (
	"net/http"

	"github.com/anbusan19/nominal/internal/handler/respond"
	"github.com/anbusan19/nominal/internal/model/request"
	"github.com/anbusan19/nominal/internal/model/response/wrapper"
	"github.com/anbusan19/nominal/internal/service/payroll"
	"github.com/gin-gonic/gin"
)

type PayrollHandler struct {
	srv *payroll.Service
}

func NewPayrollHandler(srv *payroll.Service) *PayrollHandler {
	return &PayrollHandler{srv: srv}
}

// Execute godoc
// @Summary Execute a payroll run
// @Description Distribute the treasury across the roster in one atomic batch
// @Tags /api/v1/payroll
// @Accept json
// @Produce json
// @Param run body request.ExecutePayroll true "Payroll run object"
// @Success 200 {object} wrapper.ResponseWrapper{data=entity.DistributionReport}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 422 {object} wrapper.ErrorWrapper
// @Failure 502 {object} wrapper.ErrorWrapper
// @Router /payroll/execute [post]
func (h *PayrollHandler) Execute(c *gin.Context) {
	var req request.ExecutePayroll
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	report, err := h.srv.ExecuteRun(c.Request.Context(), req.OrganizationName, req.Amounts)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: report, Success: true})
}
