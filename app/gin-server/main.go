package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/talentrail/talentrail/config"
	"github.com/talentrail/talentrail/internal/api/handlers"
	"github.com/talentrail/talentrail/internal/api/middleware"
	"github.com/talentrail/talentrail/internal/api/routes"
	"github.com/talentrail/talentrail/internal/cache"
	"github.com/talentrail/talentrail/internal/logger"
	"github.com/talentrail/talentrail/internal/providers/llm"
	mongorepo "github.com/talentrail/talentrail/internal/repositories/mongo"
	pgrepo "github.com/talentrail/talentrail/internal/repositories/postgres"
	"github.com/talentrail/talentrail/internal/services"
	"github.com/talentrail/talentrail/internal/storage"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	l.Info("MongoDB connected")

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	db := config.MongoDatabase()
	rcache := cache.NewRedisCache(config.RedisClient)

	appRepo := mongorepo.NewApplicationRepo(db)
	postRepo := mongorepo.NewJobPostRepo(db)
	accountRepo := pgrepo.NewAccountRepo(config.PostgresDB)
	resumeRepo := pgrepo.NewResumeRepo(config.PostgresDB)

	ctx := context.Background()

	// Optional collaborators: storage and generation. The lifecycle core
	// runs without them; resume endpoints fail cleanly if unconfigured.
	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		u, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer u.Close()
		uploader = u
	}

	var provider llm.Provider
	if project := os.Getenv("VERTEX_PROJECT_ID"); project != "" {
		p, err := llm.NewVertexGemini(ctx, project, os.Getenv("VERTEX_LOCATION"), os.Getenv("VERTEX_MODEL"))
		if err != nil {
			log.Fatalf("Vertex init error: %v", err)
		}
		defer p.Close()
		provider = p
	}

	strictRecruiter := os.Getenv("RECRUITER_STRICT_TRANSITIONS") == "true"
	appSvc := services.NewApplicationService(appRepo, postRepo, rcache, l, strictRecruiter)
	postSvc := services.NewJobPostService(postRepo, rcache, l)
	accountSvc := services.NewAccountService(accountRepo)
	resumeSvc := services.NewResumeService(resumeRepo, uploader, provider)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:        handlers.NewAuthHandler(accountSvc),
		Application: handlers.NewApplicationHandler(appSvc),
		JobPost:     handlers.NewJobPostHandler(postSvc),
		Resume:      handlers.NewResumeHandler(resumeSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
