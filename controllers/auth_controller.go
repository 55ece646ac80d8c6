package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/middleware"
	"github.com/chaudhary-hadi27/usman-fast-food/services"
)

const authCookieMaxAge = 24 * 60 * 60

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and sets the HttpOnly session cookie.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	token, user, err := ac.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.SetCookie(middleware.AuthCookieName, token, authCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"role":     user.Role,
	})
}

// Logout drops the session cookie.
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated session's identity.
func (ac *AuthController) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": claims.Username,
		"role":     claims.Role,
	})
}
