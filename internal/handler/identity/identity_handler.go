package identity

import (
	"net/http"

	"github.com/anbusan19/nominal/internal/handler/respond"
	"github.com/anbusan19/nominal/internal/model/request"
	"github.com/anbusan19/nominal/internal/model/response"
	"github.com/anbusan19/nominal/internal/model/response/wrapper"
	"github.com/anbusan19/nominal/internal/service/ens"
	"github.com/gin-gonic/gin"
)

type IdentityHandler struct {
	srv *ens.Service
}

func NewIdentityHandler(srv *ens.Service) *IdentityHandler {
	return &IdentityHandler{srv: srv}
}

// IssueSubname godoc
// @Summary Issue a subname
// @Description Create a subordinate name under a server-owned parent and point it at a wallet
// @Tags /api/v1/identity
// @Accept json
// @Produce json
// @Param subname body request.IssueSubname true "Subname object"
// @Success 201 {object} wrapper.ResponseWrapper{data=response.Subname}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 409 {object} wrapper.ErrorWrapper
// @Failure 422 {object} wrapper.ErrorWrapper
// @Failure 502 {object} wrapper.ErrorWrapper
// @Router /identity/subnames [post]
func (h *IdentityHandler) IssueSubname(c *gin.Context) {
	var req request.IssueSubname
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	fullName, err := h.srv.IssueSubname(c.Request.Context(), req.ParentName, req.Label, req.OwnerAddress)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{
		Data:    response.Subname{FullName: fullName, OwnerAddress: req.OwnerAddress},
		Success: true,
	})
}
