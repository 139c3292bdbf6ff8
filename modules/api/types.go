package api

import (
	"time"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"github.com/bijaykarki4742/summer-class-web/modules/task"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TaskRequest is the body of POST, PUT and DELETE /api/task. Absent fields
// are passed to the store as NULL.
type TaskRequest struct {
	ID          *int64       `json:"id"`
	TaskName    *string      `json:"task_name"`
	Description *string      `json:"description"`
	DueDate     *domain.Date `json:"due_date"`
	Tag         *string      `json:"tag"`
}

func (r TaskRequest) input() task.Input {
	return task.Input{
		Name:        r.TaskName,
		Description: r.Description,
		DueDate:     r.DueDate,
		Tag:         r.Tag,
	}
}

// DeleteTaskResponse is returned after a successful delete.
type DeleteTaskResponse struct {
	Message string      `json:"message"`
	Task    domain.Task `json:"task"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser identifies the signed-in user.
type LoginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse is the body of POST /api/login.
type LoginResponse struct {
	Success      bool       `json:"success"`
	User         *LoginUser `json:"user,omitempty"`
	Token        string     `json:"token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    int64      `json:"expires_at,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// ProfileUpdateRequest is the body of PUT /api/user/profile.
type ProfileUpdateRequest struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// UserProfile combines the caller's identity with their profile row.
type UserProfile struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  *string    `json:"full_name"`
	AvatarURL *string    `json:"avatar_url"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// UserResponse wraps a UserProfile.
type UserResponse struct {
	User UserProfile `json:"user"`
}

// ModuleHealth is one module's entry in GET /health.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Modules map[string]ModuleHealth `json:"modules"`
}
