package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmaster/internal/service"
	"taskmaster/internal/service/auth"
)

const refreshCookie = "refreshToken"

func (h *Handler) login(c *gin.Context) {
	var req service.AuthenticationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.validate.Struct(req, service.LoginMessages); err != nil {
		h.writeError(c, err)
		return
	}

	resp, err := h.accounts.Authenticate(c.Request.Context(), req, true)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !resp.HasError {
		h.setRefreshCookie(c, resp.RefreshToken)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.validate.Struct(req, service.RegisterMessages); err != nil {
		h.writeError(c, err)
		return
	}

	resp, err := h.accounts.RegisterUser(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) refreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)

	resp, err := h.accounts.RefreshToken(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if resp.HasError {
		h.clearRefreshCookie(c)
		c.JSON(http.StatusUnauthorized, resp)
		return
	}

	h.setRefreshCookie(c, resp.RefreshToken)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) signOut(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)

	if err := h.accounts.SignOut(c.Request.Context(), token); err != nil {
		h.writeError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) setRefreshCookie(c *gin.Context, token string) {
	if token == "" {
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, token, int(auth.RefreshTokenLifetime.Seconds()), apiPrefix+"/Account", "", c.Request.TLS != nil, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, "", -1, apiPrefix+"/Account", "", c.Request.TLS != nil, true)
}
