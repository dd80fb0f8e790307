package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"caseflow-backend/internal/analyses"
	"caseflow-backend/internal/cases"
	"caseflow-backend/internal/llm"
	"caseflow-backend/internal/llm/openai"
	"caseflow-backend/internal/notify"
	"caseflow-backend/internal/reminders"
	"caseflow-backend/internal/scheduler"
	"caseflow-backend/internal/shared/config"
	"caseflow-backend/internal/shared/metrics"
	"caseflow-backend/internal/shared/server/middleware"
	"caseflow-backend/internal/shared/server/respond"
	"caseflow-backend/internal/shared/storage/db"
	"caseflow-backend/internal/shared/storage/object"
	localstore "caseflow-backend/internal/shared/storage/object/local"
	s3store "caseflow-backend/internal/shared/storage/object/s3"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Policy(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: pollingGroup,
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 2, Burst: 10},
				"POLLING": {Rate: 10, Burst: 30},
			},
		}),
	)

	// Dependencies
	store := newObjectStore(cfg)
	sqlDB := connectDB(cfg)

	var caseRepo cases.Repo
	var tasks scheduler.Client
	if sqlDB != nil {
		caseRepo = &cases.PGRepo{DB: sqlDB}
		tasks = &scheduler.PGClient{DB: sqlDB}
	} else {
		caseRepo = cases.NewMemoryRepo()
		tasks = scheduler.NewMemoryClient()
	}

	notifier := newNotifier(cfg)
	remindersSvc := &reminders.Scheduler{Tasks: tasks}

	caseSvc := &cases.Service{
		Repo:             caseRepo,
		Store:            store,
		Notifier:         notifier,
		Reminders:        remindersSvc,
		ReviewRecipients: cfg.ReviewRecipients,
	}
	caseHandler := cases.NewHandler(caseSvc)

	analysisSvc := &analyses.Service{
		Cases:       caseRepo,
		Store:       store,
		LLM:         newLLMClient(cfg),
		Provider:    cfg.LLMProvider,
		Model:       cfg.LLMModel,
		PassTimeout: time.Duration(cfg.LLMTimeoutSecs) * time.Second,
		Evaluator:   caseSvc,
	}
	analysisHandler := analyses.NewHandler(analysisSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	caseHandler.RegisterRoutes(api)
	analysisHandler.RegisterRoutes(api)

	return r
}

func connectDB(cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(context.Background(), dbConn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		return nil
	}
	return dbConn
}

func newObjectStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			log.Printf("failed to init s3 store, falling back to local: %v", err)
		} else {
			return store
		}
	}
	return localstore.New(cfg.LocalStoreDir)
}

func newLLMClient(cfg config.Config) llm.Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if cfg.LLMProvider != "openai" || apiKey == "" {
		log.Printf("llm provider %q not configured, using placeholder", cfg.LLMProvider)
		return &llm.PlaceholderClient{}
	}
	client, err := openai.NewClient(apiKey, cfg.LLMModel, time.Duration(cfg.LLMTimeoutSecs)*time.Second)
	if err != nil {
		log.Printf("failed to init openai client, using placeholder: %v", err)
		return &llm.PlaceholderClient{}
	}
	return client
}

func newNotifier(cfg config.Config) notify.Client {
	if cfg.NotifyQueueURL == "" {
		log.Printf("NOTIFY_QUEUE_URL not set, notifications recorded in memory only")
		return notify.NewMemoryClient()
	}
	client, err := notify.NewSQSClient(context.Background(), cfg.AWSRegion, cfg.NotifyQueueURL)
	if err != nil {
		log.Printf("failed to init sqs notifier, recording in memory only: %v", err)
		return notify.NewMemoryClient()
	}
	return client
}

// pollingGroup gives case reads a higher rate budget than mutations.
func pollingGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodGet {
		return "POLLING"
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
