package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Govind-619/DomainDesk/config"
	"github.com/Govind-619/DomainDesk/controllers"
	"github.com/Govind-619/DomainDesk/metrics"
	"github.com/Govind-619/DomainDesk/repository"
	"github.com/Govind-619/DomainDesk/routes"
	"github.com/Govind-619/DomainDesk/services"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	// Initialize logger
	if err := utils.InitLogger(cfg.LogDir, cfg.IsProduction()); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer utils.SyncLogger()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		utils.LogError("Database initialization failed: %v", err)
		log.Fatal("Database initialization failed:", err)
	}

	users := repository.NewUserRepository(db)
	customers := repository.NewCustomerRepository(db)
	projects := repository.NewProjectRepository(db)

	authService := services.NewAuthService(users, cfg.JWTSecret)
	if err := authService.EnsureAdmin(context.Background(), services.AdminSeed{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		FullName: cfg.AdminFullName,
	}); err != nil {
		utils.LogError("Failed to seed admin user: %v", err)
		log.Fatal("Failed to seed admin user:", err)
	}

	gateway := services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	var mailer utils.Mailer = utils.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = utils.NewSMTPMailer(utils.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		utils.LogWarn("SMTP_HOST not set, renewal emails will only be logged")
	}

	docs := services.NewFileDocumentGenerator(cfg.ProjectsDir)

	var locker services.Locker = services.NewLocalLocker()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL:", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		locker = services.NewRedisLocker(client, 30*time.Second)
		utils.LogInfo("Using Redis renewal lock at %s", opts.Addr)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	renewalMetrics := metrics.NewRenewalMetrics(registry)

	renewals := services.NewRenewalService(services.RenewalDeps{
		Projects: projects,
		Users:    users,
		Gateway:  gateway,
		Docs:     docs,
		Mailer:   mailer,
		Locker:   locker,
		Metrics:  renewalMetrics,
		Currency: cfg.PaymentCurrency,
	})

	router := routes.SetupRouter(routes.Dependencies{
		Auth:          controllers.NewAuthController(authService),
		Projects:      controllers.NewProjectController(services.NewProjectService(projects, customers, docs)),
		Renewals:      controllers.NewRenewalController(renewals),
		Customers:     controllers.NewCustomerController(services.NewCustomerService(customers, docs)),
		Authenticator: authService,
		Gatherer:      registry,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("%s starting on port %s (%s)", utils.AppName, cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError("Error starting server: %v", err)
			log.Fatal("Error starting server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.LogInfo("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError("Server forced to shutdown: %v", err)
	}
	utils.LogInfo("Server exited")
}
