package handlers

import (
	"errors"

	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	opts        Options
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, opts Options) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		opts:        opts,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Email       string `json:"email" validate:"required"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badInput(err)
	}

	ctx, cancel := h.opts.requestContext(c)
	defer cancel()

	user, err := h.authService.Register(ctx, services.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		return err
	}

	h.opts.Metrics.UserRegistered()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"userId":  user.ID,
		"message": "Registered successfully.",
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.Join(services.ErrCredentialsRequired, err)
	}

	ctx, cancel := h.opts.requestContext(c)
	defer cancel()

	res, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.opts.Metrics.LoginFailed()
		}
		return err
	}

	return c.JSON(fiber.Map{
		"token":     res.Token,
		"expiresIn": res.ExpiresIn,
		"userId":    res.UserID,
		"role":      res.Role,
	})
}
