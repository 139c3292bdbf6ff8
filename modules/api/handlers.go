package api

import (
	"context"
	"errors"
	"log"

	"github.com/bijaykarki4742/summer-class-web/identity"
	"github.com/bijaykarki4742/summer-class-web/modules/activity"
	"github.com/bijaykarki4742/summer-class-web/modules/auth"
	"github.com/bijaykarki4742/summer-class-web/modules/oauth"
	"github.com/bijaykarki4742/summer-class-web/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
)

// HealthChecker is implemented by every module that reports its health.
type HealthChecker interface {
	Health(ctx context.Context) mono.HealthStatus
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	tasks    task.TaskPort
	auth     auth.AuthPort
	oauth    oauth.OAuthPort
	activity activity.ActivityPort
	health   map[string]HealthChecker
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	tasks task.TaskPort,
	authPort auth.AuthPort,
	oauthPort oauth.OAuthPort,
	activityPort activity.ActivityPort,
	health map[string]HealthChecker,
) *Handlers {
	return &Handlers{
		tasks:    tasks,
		auth:     authPort,
		oauth:    oauthPort,
		activity: activityPort,
		health:   health,
	}
}

// Health reports every registered module.
func (h *Handlers) Health(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "healthy", Modules: make(map[string]ModuleHealth, len(h.health))}
	for name, checker := range h.health {
		status := checker.Health(c.UserContext())
		resp.Modules[name] = ModuleHealth{
			Healthy: status.Healthy,
			Message: status.Message,
			Details: status.Details,
		}
		if !status.Healthy {
			resp.Status = "unhealthy"
		}
	}
	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// ListTasks handles GET /api/task.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListTasks(c.UserContext())
	if err != nil {
		log.Printf("[api] GET /api/task error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to fetch tasks"})
	}
	return c.JSON(tasks)
}

// CreateTask handles POST /api/task.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[api] POST /api/task invalid body: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Error creating task"})
	}

	created, err := h.tasks.CreateTask(c.UserContext(), req.input())
	if err != nil {
		log.Printf("[api] POST /api/task error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Error creating task"})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTask handles PUT /api/task.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[api] PUT /api/task invalid body: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Error updating task"})
	}
	if req.ID == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Task not found"})
	}

	updated, err := h.tasks.UpdateTask(c.UserContext(), *req.ID, req.input())
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Task not found"})
		}
		log.Printf("[api] PUT /api/task error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Error updating task"})
	}
	return c.JSON(updated)
}

// DeleteTask handles DELETE /api/task.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[api] DELETE /api/task invalid body: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Error deleting task"})
	}
	if req.ID == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Task not found"})
	}

	deleted, err := h.tasks.DeleteTask(c.UserContext(), *req.ID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Task not found"})
		}
		log.Printf("[api] DELETE /api/task error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Error deleting task"})
	}
	return c.JSON(DeleteTaskResponse{Message: "Task deleted", Task: *deleted})
}

// Login handles POST /api/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(LoginResponse{Message: "Internal server error"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(LoginResponse{Message: "Email and password are required"})
	}

	session, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		var apiErr *identity.APIError
		switch {
		case errors.Is(err, identity.ErrNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(LoginResponse{Message: err.Error()})
		case errors.As(err, &apiErr):
			return c.Status(fiber.StatusUnauthorized).JSON(LoginResponse{Message: apiErr.Message})
		default:
			log.Printf("[api] Login error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(LoginResponse{Message: "Internal server error"})
		}
	}

	return c.JSON(LoginResponse{
		Success:      true,
		User:         &LoginUser{ID: session.User.ID, Email: session.User.Email},
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
	})
}

// GetProfile handles GET /api/user/profile.
func (h *Handlers) GetProfile(c *fiber.Ctx) error {
	claims, token, ok := claimsFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Unauthorized"})
	}

	profile, err := h.auth.GetProfile(c.UserContext(), token, claims.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Profile not found"})
	}
	return c.JSON(UserResponse{User: userProfile(claims, profile)})
}

// UpdateProfile handles PUT /api/user/profile. Empty fields clear the
// stored value.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	claims, token, ok := claimsFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Unauthorized"})
	}

	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Internal server error"})
	}

	profile, err := h.auth.UpdateProfile(c.UserContext(), auth.UpdateProfileRequest{
		Token:     token,
		UserID:    claims.UserID,
		FullName:  nullIfEmpty(req.FullName),
		AvatarURL: nullIfEmpty(req.AvatarURL),
	})
	if err != nil {
		log.Printf("[api] Profile update for %s failed: %v", claims.UserID, err)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Failed to update profile"})
	}
	return c.JSON(UserResponse{User: userProfile(claims, profile)})
}

// GoogleSignIn handles GET /auth/google.
func (h *Handlers) GoogleSignIn(c *fiber.Ctx) error {
	url, err := h.oauth.GoogleAuthURL(c.UserContext())
	if err != nil {
		if errors.Is(err, oauth.ErrNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
		}
		log.Printf("[api] Google sign-in error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Internal server error"})
	}
	return c.Redirect(url, fiber.StatusFound)
}

// GoogleCallback handles GET /auth/callback/google.
func (h *Handlers) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: oauth.ErrMissingCode.Error()})
	}

	user, err := h.oauth.GoogleExchange(c.UserContext(), code, c.Query("state"))
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, oauth.ErrInvalidState):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		default:
			log.Printf("[api] Google callback error: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "Google sign-in failed"})
		}
	}
	return c.JSON(fiber.Map{"user": user})
}

// RecentActivity handles GET /api/activity.
func (h *Handlers) RecentActivity(c *fiber.Ctx) error {
	entries, err := h.activity.RecentActivity(c.UserContext(), c.QueryInt("limit", 20))
	if err != nil {
		log.Printf("[api] GET /api/activity error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to fetch activity"})
	}
	return c.JSON(entries)
}

func userProfile(claims *identity.Claims, profile *identity.Profile) UserProfile {
	return UserProfile{
		ID:        claims.UserID,
		Email:     claims.Email,
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
