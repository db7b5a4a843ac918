package treasury

import (
	"net/http"

	"github.com/anbusan19/nominal/internal/handler/respond"
	"github.com/anbusan19/nominal/internal/model/request"
	"github.com/anbusan19/nominal/internal/model/response"
	"github.com/anbusan19/nominal/internal/model/response/wrapper"
	"github.com/anbusan19/nominal/internal/service/treasury"
	"github.com/gin-gonic/gin"
)

type TreasuryHandler struct {
	srv *treasury.Service
}

func NewTreasuryHandler(srv *treasury.Service) *TreasuryHandler {
	return &TreasuryHandler{srv: srv}
}

// Fund godoc
// @Summary Fund an organization's treasury
// @Description Deposit stablecoin into the payroll vault for an organization
// @Tags /api/v1/treasury
// @Accept json
// @Produce json
// @Param funding body request.FundTreasury true "Funding object"
// @Success 200 {object} wrapper.ResponseWrapper{data=response.FundTreasury}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 422 {object} wrapper.ErrorWrapper
// @Failure 502 {object} wrapper.ErrorWrapper
// @Router /treasury/fund [post]
func (h *TreasuryHandler) Fund(c *gin.Context) {
	var req request.FundTreasury
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	ref, err := h.srv.Deposit(c.Request.Context(), req.OrganizationName, req.Amount)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data: response.FundTreasury{
			OrganizationName: req.OrganizationName,
			Amount:           req.Amount,
			SettlementRef:    ref,
		},
		Success: true,
	})
}

// Balance godoc
// @Summary Get treasury balance
// @Description Current distributable vault balance for an organization
// @Tags /api/v1/treasury
// @Accept json
// @Produce json
// @Param organizationName query string true "Organization ENS name"
// @Success 200 {object} wrapper.ResponseWrapper{data=response.TreasuryBalance}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 502 {object} wrapper.ErrorWrapper
// @Router /treasury/balance [get]
func (h *TreasuryHandler) Balance(c *gin.Context) {
	name := c.Query("organizationName")
	if name == "" {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: "organizationName query parameter is required", Success: false})
		return
	}

	balance, err := h.srv.BalanceFor(c.Request.Context(), name)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    response.TreasuryBalance{OrganizationName: name, Balance: balance},
		Success: true,
	})
}
