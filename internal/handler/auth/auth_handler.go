package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/anbusan19/nominal/internal/model/request"
	"github.com/anbusan19/nominal/internal/model/response"
	"github.com/anbusan19/nominal/internal/model/response/wrapper"
	"github.com/anbusan19/nominal/pkg/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	username string
	password string
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthHandler(username, password string, secret []byte, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL == 0 {
		tokenTTL = 72 * time.Hour
	}
	return &AuthHandler{username: username, password: password, secret: secret, tokenTTL: tokenTTL}
}

// Token godoc
// @Summary Issue an API token
// @Description Exchange operator credentials for a bearer token
// @Tags /api/v1/auth
// @Accept json
// @Produce json
// @Param credentials body request.IssueToken true "Credentials"
// @Success 200 {object} wrapper.ResponseWrapper{data=response.Token}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 401 {object} wrapper.ErrorWrapper
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req request.IssueToken
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Invalid credentials", Success: false})
		return
	}

	token, err := utils.GenerateToken(req.Username, h.secret, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: response.Token{Token: token}, Success: true})
}
