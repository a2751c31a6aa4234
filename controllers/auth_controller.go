package controllers

import (
	"net/http"
	"time"

	"github.com/JerryLinyx/newsdigest/utils"
	"github.com/gin-gonic/gin"
)

// AuthController issues tokens for the single configured admin account.
type AuthController struct {
	username     string
	passwordHash string
	secret       string
	ttl          time.Duration
}

// NewAuthController hashes password once at startup.
func NewAuthController(username, password, secret string, ttl time.Duration) (*AuthController, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &AuthController{
		username:     username,
		passwordHash: hash,
		secret:       secret,
		ttl:          ttl,
	}, nil
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Username != a.username || !utils.CheckPassword(input.Password, a.passwordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := utils.GenerateJWT(input.Username, a.secret, a.ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
