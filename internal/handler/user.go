package handler

import (
	"context"
	"errors"
	"net/http"

	"bloodlink-api/internal/models"
	"bloodlink-api/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles registration, login and profile requests
type UserHandler struct {
	service UserService
}

// Service interface for dependency injection
type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, id string, in service.UpdateInput) (models.User, error)
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{service: svc}
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	BloodGroup string `json:"bloodGroup"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// Register handles POST /api/register requests
//
//	@Summary	Register a new donor; the address must geocode successfully.
//	@Accept		json
//	@Produce	json
//	@Param		body	body	registerRequest	true	"registration"
//	@Success	200
//	@Failure	400
//	@Failure	409
//	@Failure	422
//	@Router		/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		BloodGroup: req.BloodGroup,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": user.Sanitized()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password, bloodGroup, address are required"})
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
	case errors.Is(err, service.ErrAddressNotResolved):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not geocode address; please refine it"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login requests
//
//	@Summary	Check donor credentials.
//	@Accept		json
//	@Produce	json
//	@Param		body	body	loginRequest	true	"credentials"
//	@Success	200
//	@Failure	401
//	@Router		/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": user.ID})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// GetUser handles GET /api/users/:id requests
//
//	@Summary	Fetch a donor profile.
//	@Produce	json
//	@Param		id	path	string	true	"user id"
//	@Success	200
//	@Failure	404
//	@Router		/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": user.Sanitized()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type updateRequest struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	BloodGroup *string `json:"bloodGroup"`
	Address    *string `json:"address"`
}

// UpdateUser handles PUT /api/users/:id requests
//
//	@Summary	Update a donor profile; a changed address is re-geocoded.
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string			true	"user id"
//	@Param		body	body	updateRequest	true	"fields to update"
//	@Success	200
//	@Failure	404
//	@Failure	422
//	@Router		/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.service.Update(c.Request.Context(), c.Param("id"), service.UpdateInput{
		Name:       req.Name,
		Phone:      req.Phone,
		BloodGroup: req.BloodGroup,
		Address:    req.Address,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": user.Sanitized()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
	case errors.Is(err, service.ErrAddressNotResolved):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not geocode new address"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
