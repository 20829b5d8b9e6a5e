package handlers

import (
	"ticketing-backoffice/internal/middleware"
	"ticketing-backoffice/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin organizer staff"`
}

// Login handles staff authentication
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	loginResp, err := h.authSvc.Authenticate(req.Email, req.Password)
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusUnauthorized)
	}

	return utils.Success(c, loginResp, "Login successful")
}

// CreateUser creates a new staff account (Admin only)
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req RegisterUserRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	user, err := h.authSvc.CreateUser(req.Email, req.Password, req.Role)
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	return utils.Success(c, user, "User created successfully", fiber.StatusCreated)
}

// RegisterUser allows public staff signup; elevated roles must be created by
// an admin.
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterUserRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	if req.Role != "staff" {
		return utils.Error(c, "Only staff role can be registered publicly", fiber.StatusForbidden)
	}

	user, err := h.authSvc.CreateUser(req.Email, req.Password, req.Role)
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	return utils.Success(c, user, "User registered successfully", fiber.StatusCreated)
}

// GetProfile returns the current user profile
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusUnauthorized)
	}

	user, err := h.authSvc.GetUserProfile(userID)
	if err != nil {
		return utils.Error(c, "User not found", fiber.StatusNotFound)
	}

	return utils.Success(c, user, "Profile retrieved successfully")
}
