package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/api"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/config"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/email"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/services"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/workflows"
)

func main() {
	// Carregar configuração
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Recupera Service...")

	// Configurar modo do Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar ao banco de dados
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// Conectar ao Redis
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warnf("Error connecting to Redis: %v", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	// Inicializar cliente de storage
	var storageClient *database.StorageClient
	if cfg.Storage.Endpoint != "" && cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		storageClient, err = database.NewStorageClient(&cfg.Storage, logger)
		if err != nil {
			logger.Warnf("Error initializing storage client: %v", err)
			storageClient = nil
		} else {
			if err := storageClient.HealthCheck(); err != nil {
				logger.Warnf("Storage health check failed: %v", err)
			} else {
				logger.Info("Storage connection healthy")
			}
		}
	} else {
		logger.Warn("Storage credentials not provided, XML archival will not be available")
	}

	// Inicializar serviço de email
	var resendService *email.ResendService
	if cfg.Email.ResendAPIKey != "" {
		resendService = email.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Server.BaseURL, logger)
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, email service will not be available")
	}

	// Inicializar cliente do Inngest
	inngestClient, err := workflows.NewInngestClient(cfg, logger)
	if err != nil {
		logger.Warnf("Error initializing Inngest client: %v", err)
		inngestClient = nil
	}

	if inngestClient == nil {
		logger.Warn("Inngest credentials not provided, async reclassification will not be available")
	}

	// Inicializar serviços
	calcService := services.NewCalculationService(db, redis, logger)

	if inngestClient != nil {
		if err := inngestClient.RegisterWorkflows(database.NewInvoiceRepository(db, logger), calcService); err != nil {
			logger.Warnf("Error registering workflows: %v", err)
		}
	}
	fileService := services.NewFileService(db, storageClient, calcService, logger)
	reviewService := services.NewReviewService(db, calcService, logger)
	reportService := services.NewReportService(db, calcService, resendService, storageClient, logger)

	companyRepo := database.NewCompanyRepository(db, logger)

	// Inicializar API
	apiHandler := api.NewAPI(
		companyRepo,
		fileService,
		reviewService,
		calcService,
		reportService,
		inngestClient,
		logger,
	)

	// Configurar router
	router := setupRouter(apiHandler, inngestClient, db, redis, cfg)

	// Criar servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para sinais de término
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor em goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar sinal de término
	<-quit
	logger.Info("Shutting down server...")

	// Contexto com timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura o logger conforme a configuração
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura o router principal
func setupRouter(apiHandler *api.API, inngestClient *workflows.InngestClient, db *database.DB, redis *database.Redis, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desenvolvimento
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		checks := gin.H{}

		if err := db.HealthCheck(); err != nil {
			status = "degraded"
			checks["database"] = err.Error()
		} else {
			checks["database"] = "ok"
		}

		if redis != nil {
			if err := redis.HealthCheck(); err != nil {
				status = "degraded"
				checks["redis"] = err.Error()
			} else {
				checks["redis"] = "ok"
			}
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().UTC(),
			"service":   "recupera-service",
			"version":   "1.0.0",
		})
	})

	// Endpoint de invocação dos workflows
	if inngestClient != nil {
		router.Any("/api/inngest", gin.WrapH(inngestClient.Serve()))
	}

	// API v1
	v1 := router.Group("/v1")
	{
		// Empresas
		v1.POST("/companies", apiHandler.CreateCompany)
		v1.GET("/companies", apiHandler.ListCompanies)
		v1.GET("/companies/:id", apiHandler.GetCompany)
		v1.DELETE("/companies/:id", apiHandler.DeleteCompany)

		// Arquivos XML
		v1.POST("/companies/:id/files", apiHandler.UploadFile)
		v1.GET("/companies/:id/files", apiHandler.ListFiles)
		v1.DELETE("/companies/:id/files/:fileID", apiHandler.DeleteFile)
		v1.POST("/companies/:id/files/process", apiHandler.ProcessFiles)

		// Notas processadas
		v1.GET("/companies/:id/invoices", apiHandler.ListInvoices)

		// Revisão humana
		v1.GET("/companies/:id/review", apiHandler.ListReview)
		v1.POST("/companies/:id/review", apiHandler.SaveReview)

		// Dados da apuração do Simples
		v1.PUT("/companies/:id/calculations", apiHandler.SaveCalculationInputs)
		v1.GET("/companies/:id/calculations", apiHandler.GetCalculationInputs)

		// Resultados
		v1.GET("/companies/:id/results", apiHandler.GetResults)
		v1.GET("/companies/:id/results/yearly", apiHandler.GetYearlyResults)
		v1.GET("/companies/:id/results/total", apiHandler.GetTotalResult)

		// Relatórios
		v1.GET("/companies/:id/report/xlsx", apiHandler.DownloadXLSX)
		v1.GET("/companies/:id/report/pdf", apiHandler.DownloadPDF)
		v1.POST("/companies/:id/report/email", apiHandler.EmailReport)

		// Reclassificação assíncrona
		v1.POST("/companies/:id/reclassify", apiHandler.Reclassify)
	}

	return router
}
