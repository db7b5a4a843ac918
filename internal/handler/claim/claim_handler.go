package claim

import (
	"net/http"

	"github.com/anbusan19/nominal/internal/handler/respond"
	"github.com/anbusan19/nominal/internal/model/request"
	"github.com/anbusan19/nominal/internal/model/response"
	"github.com/anbusan19/nominal/internal/model/response/wrapper"
	"github.com/anbusan19/nominal/internal/service/claim"
	"github.com/anbusan19/nominal/internal/service/ens"
	"github.com/gin-gonic/gin"
)

type ClaimHandler struct {
	srv *claim.Service
	ens *ens.Service
}

func NewClaimHandler(srv *claim.Service, ensSrv *ens.Service) *ClaimHandler {
	return &ClaimHandler{srv: srv, ens: ensSrv}
}

// VerifyOwnership godoc
// @Summary Verify domain ownership
// @Description Check whether a wallet address is the registered owner of a domain
// @Tags /api/v1/claims
// @Accept json
// @Produce json
// @Param verification body request.VerifyOwnership true "Verification object"
// @Success 200 {object} wrapper.ResponseWrapper{data=response.VerifyOwnership}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 502 {object} wrapper.ErrorWrapper
// @Router /claims/verify-ownership [post]
func (h *ClaimHandler) VerifyOwnership(c *gin.Context) {
	var req request.VerifyOwnership
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	verified, owner, err := h.ens.VerifyOwnership(c.Request.Context(), req.Domain, req.Address)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data: response.VerifyOwnership{
			Domain:   req.Domain,
			Address:  req.Address,
			Owner:    owner,
			Verified: verified,
		},
		Success: true,
	})
}

// Commit godoc
// @Summary Start a domain claim
// @Description Submit the commitment that opens the two-phase claim for a label
// @Tags /api/v1/claims
// @Accept json
// @Produce json
// @Param claim body request.CommitClaim true "Claim object"
// @Success 201 {object} wrapper.ResponseWrapper{data=claim.Status}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 409 {object} wrapper.ErrorWrapper
// @Failure 502 {object} wrapper.ErrorWrapper
// @Router /claims [post]
func (h *ClaimHandler) Commit(c *gin.Context) {
	var req request.CommitClaim
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	status, err := h.srv.Commit(c.Request.Context(), req.Label, req.OwnerAddress)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{Data: status, Success: true})
}

// Status godoc
// @Summary Get claim status
// @Description Current state of a claim, including the remaining wait countdown
// @Tags /api/v1/claims
// @Accept json
// @Produce json
// @Param label path string true "Domain label"
// @Success 200 {object} wrapper.ResponseWrapper{data=claim.Status}
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 410 {object} wrapper.ErrorWrapper
// @Router /claims/{label} [get]
func (h *ClaimHandler) Status(c *gin.Context) {
	status, err := h.srv.Status(c.Request.Context(), c.Param("label"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: status, Success: true})
}

// Register godoc
// @Summary Register a claimed domain
// @Description Finish the claim's registration phase once the wait window has elapsed
// @Tags /api/v1/claims
// @Accept json
// @Produce json
// @Param label path string true "Domain label"
// @Success 200 {object} wrapper.ResponseWrapper{data=claim.Status}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 410 {object} wrapper.ErrorWrapper
// @Failure 422 {object} wrapper.ErrorWrapper
// @Failure 502 {object} wrapper.ErrorWrapper
// @Router /claims/{label}/register [post]
func (h *ClaimHandler) Register(c *gin.Context) {
	status, err := h.srv.Register(c.Request.Context(), c.Param("label"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: status, Success: true})
}

// Wrap godoc
// @Summary Wrap a registered domain
// @Description Move the registered name into the wrapper and record the organization
// @Tags /api/v1/claims
// @Accept json
// @Produce json
// @Param label path string true "Domain label"
// @Success 200 {object} wrapper.ResponseWrapper{data=claim.Status}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Failure 422 {object} wrapper.ErrorWrapper
// @Failure 502 {object} wrapper.ErrorWrapper
// @Router /claims/{label}/wrap [post]
func (h *ClaimHandler) Wrap(c *gin.Context) {
	status, err := h.srv.Wrap(c.Request.Context(), c.Param("label"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: status, Success: true})
}

// Abandon godoc
// @Summary Abandon a claim
// @Description Drop a claim session that has not reached an on-chain spend
// @Tags /api/v1/claims
// @Accept json
// @Produce json
// @Param label path string true "Domain label"
// @Success 200 {object} wrapper.SuccessWrapper
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 404 {object} wrapper.ErrorWrapper
// @Router /claims/{label} [delete]
func (h *ClaimHandler) Abandon(c *gin.Context) {
	if err := h.srv.Abandon(c.Request.Context(), c.Param("label")); err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, wrapper.SuccessWrapper{Message: "Claim abandoned", Success: true})
}
