package api

import (
	"context"
	"fmt"
	"log"

	"github.com/bijaykarki4742/summer-class-web/config"
	"github.com/bijaykarki4742/summer-class-web/modules/activity"
	"github.com/bijaykarki4742/summer-class-web/modules/auth"
	"github.com/bijaykarki4742/summer-class-web/modules/oauth"
	"github.com/bijaykarki4742/summer-class-web/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP API module.
type APIModule struct {
	cfg    *config.Config
	app    *fiber.App
	health map[string]HealthChecker

	taskPort     task.TaskPort
	authPort     auth.AuthPort
	oauthPort    oauth.OAuthPort
	activityPort activity.ActivityPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg *config.Config) *APIModule {
	return &APIModule{cfg: cfg, health: make(map[string]HealthChecker)}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"task", "auth", "oauth", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	case "oauth":
		m.oauthPort = oauth.NewOAuthAdapter(container)
	case "activity":
		m.activityPort = activity.NewActivityAdapter(container)
	}
}

// AddHealthCheck includes a module in GET /health.
func (m *APIModule) AddHealthCheck(name string, checker HealthChecker) {
	m.health[name] = checker
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	switch {
	case m.taskPort == nil:
		return fmt.Errorf("task dependency not set")
	case m.authPort == nil:
		return fmt.Errorf("auth dependency not set")
	case m.oauthPort == nil:
		return fmt.Errorf("oauth dependency not set")
	case m.activityPort == nil:
		return fmt.Errorf("activity dependency not set")
	}

	m.AddHealthCheck(m.Name(), m)
	handlers := NewHandlers(m.taskPort, m.authPort, m.oauthPort, m.activityPort, m.health)
	m.app = newApp(handlers, m.authPort, m.cfg.TasksRequireAuth)

	// Start server in goroutine
	go func() {
		if err := m.app.Listen(m.cfg.HTTPAddr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s (tasks require auth: %t)", m.cfg.HTTPAddr, m.cfg.TasksRequireAuth)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.HTTPAddr,
		},
	}
}

// newApp builds the Fiber app with every route.
func newApp(h *Handlers, authPort auth.AuthPort, tasksRequireAuth bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "myday",
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	app.Get("/health", h.Health)

	api := app.Group("/api")

	tasks := api.Group("/task")
	if tasksRequireAuth {
		tasks.Use(AuthMiddleware(authPort))
	}
	tasks.Get("", h.ListTasks)
	tasks.Post("", h.CreateTask)
	tasks.Put("", h.UpdateTask)
	tasks.Delete("", h.DeleteTask)

	api.Post("/login", h.Login)
	api.Get("/activity", h.RecentActivity)

	profile := api.Group("/user/profile", AuthMiddleware(authPort))
	profile.Get("", h.GetProfile)
	profile.Put("", h.UpdateProfile)

	app.Get("/auth/google", h.GoogleSignIn)
	app.Get("/auth/callback/google", h.GoogleCallback)

	return app
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
