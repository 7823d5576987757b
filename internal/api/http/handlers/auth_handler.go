package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// AuthHandler serves worker authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// WorkerLogin POST /auth/workers/login.
func (h *AuthHandler) WorkerLogin(c *fiber.Ctx) error {
	var req dto.WorkerLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.LoginWorker(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "login successful", dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Employee:  employeeResponse(result.Worker),
	})
}
