package respond

import (
	"net/http"

	"github.com/anbusan19/nominal/internal/model/response/wrapper"
	"github.com/anbusan19/nominal/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// Error writes the wrapped error body with the HTTP status matching the
// error's kind.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.JSON(statusFor(kind), wrapper.ErrorWrapper{
		Message: err.Error(),
		Kind:    string(kind),
		Success: false,
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindOnChainRejection:
		return http.StatusUnprocessableEntity
	case apperr.KindClaimExpired:
		return http.StatusGone
	case apperr.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
