package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/bijaykarki4742/summer-class-web/config"
	"github.com/bijaykarki4742/summer-class-web/modules/activity"
	"github.com/bijaykarki4742/summer-class-web/modules/api"
	"github.com/bijaykarki4742/summer-class-web/modules/auth"
	"github.com/bijaykarki4742/summer-class-web/modules/oauth"
	"github.com/bijaykarki4742/summer-class-web/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== myday task server ===")

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	taskModule := task.NewModule(cfg)
	activityModule := activity.NewModule()
	authModule := auth.NewModule(cfg)
	oauthModule := oauth.NewModule(cfg)

	apiModule := api.NewModule(cfg)
	apiModule.AddHealthCheck(taskModule.Name(), taskModule)
	apiModule.AddHealthCheck(activityModule.Name(), activityModule)
	apiModule.AddHealthCheck(authModule.Name(), authModule)
	apiModule.AddHealthCheck(oauthModule.Name(), oauthModule)

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(taskModule)     // Owns the tasks table, emits task events
	app.Register(activityModule) // Consumes task events
	app.Register(authModule)     // Fronts the identity provider
	app.Register(oauthModule)    // Google sign-in
	app.Register(apiModule)      // Depends on all of the above

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	if cfg.UsePostgres() {
		log.Println("Task store: PostgreSQL (DATABASE_URL)")
	} else {
		log.Printf("Task store: SQLite (%s)", cfg.DBPath)
	}
	if cfg.RedisAddr != "" {
		log.Printf("Task list cache: Redis at %s (ttl %s)", cfg.RedisAddr, cfg.CacheTTL.Duration)
	}
	if !cfg.IdentityConfigured() {
		log.Println("Identity provider: NOT CONFIGURED (set SUPABASE_URL and SUPABASE_ANON_KEY)")
	}
	if !cfg.GoogleConfigured() {
		log.Println("Google sign-in: NOT CONFIGURED")
	}
	log.Println("")
	log.Printf("REST API Endpoints (%s):", cfg.HTTPAddr)
	log.Println("")
	log.Println("  Tasks:")
	log.Println("  GET    /api/task              - List tasks, newest first")
	log.Println("  POST   /api/task              - Create a task")
	log.Println("  PUT    /api/task              - Replace a task")
	log.Println("  DELETE /api/task              - Delete a task")
	log.Println("  GET    /api/activity          - Recent task activity")
	log.Println("")
	log.Println("  Auth:")
	log.Println("  POST   /api/login             - Sign in with email and password")
	log.Println("  GET    /api/user/profile      - Current user's profile (Bearer token)")
	log.Println("  PUT    /api/user/profile      - Update profile (Bearer token)")
	log.Println("  GET    /auth/google           - Start Google sign-in")
	log.Println("  GET    /auth/callback/google  - Google sign-in callback")
	log.Println("")
	log.Println("  GET    /health                - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
