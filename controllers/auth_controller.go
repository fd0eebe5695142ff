package controllers

import (
	"context"

	"github.com/Govind-619/DomainDesk/services"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gin-gonic/gin"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
}

type AuthController struct {
	auth AuthService
}

func NewAuthController(auth AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Login handles POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	utils.LogInfo("Login called")

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", "Email and password are required")
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgLoginSuccess, result)
}
