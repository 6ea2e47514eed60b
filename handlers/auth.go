package handlers

import (
	"context"
	"errors"
	"net/http"

	"options-pricer/auth"
	"options-pricer/database"
	"options-pricer/metrics"
	"options-pricer/middleware"
	"options-pricer/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Tokens issues and refreshes bearer tokens.
type Tokens interface {
	middleware.TokenParser
	IssuePair(ctx context.Context, id auth.Identity) (auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	RefreshEnabled() bool
}

type CreateUserInput struct {
	Username string `json:"username" binding:"required,max=150"`
	// bcrypt only looks at the first 72 bytes.
	Password string `json:"password" binding:"required,max=72"`
}

type TokenInput struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type AuthHandler struct {
	users      UserStore
	tokens     Tokens
	metrics    *metrics.Metrics
	bcryptCost int
}

func NewAuthHandler(users UserStore, tokens Tokens, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, metrics: m, bcryptCost: bcrypt.DefaultCost}
}

// CreateUser registers a new account.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), h.bcryptCost)
	if err != nil {
		internalError(c, "Error hashing password", err)
		return
	}

	user := models.User{Username: input.Username, HashedPassword: string(hashedPassword)}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already registered"})
			return
		}
		internalError(c, "Error creating user", err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{ID: user.ID, Username: user.Username})
}

// Token exchanges form-encoded credentials for a bearer token.
func (h *AuthHandler) Token(c *gin.Context) {
	var input TokenInput
	if err := c.ShouldBindWith(&input, binding.Form); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.users.FindByUsername(c.Request.Context(), input.Username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		internalError(c, "Error looking up user", err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)) != nil {
		h.observe("failure")
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate user."})
		return
	}

	pair, err := h.tokens.IssuePair(c.Request.Context(), auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		internalError(c, "Error generating token", err)
		return
	}

	h.observe("success")
	c.JSON(http.StatusOK, pair)
}

// Refresh trades a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	if !h.tokens.RefreshEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Refresh tokens are not enabled"})
		return
	}

	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	pair, err := h.tokens.Refresh(c.Request.Context(), input.RefreshToken)
	if errors.Is(err, auth.ErrInvalidToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token", "details": err.Error()})
		return
	}
	if err != nil {
		internalError(c, "Error refreshing token", err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Me returns the account behind the caller's token.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate user."})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), id.UserID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate user."})
		return
	}
	if err != nil {
		internalError(c, "Error looking up user", err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}
