package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/talentrail/talentrail/internal/api/handlers"
	"github.com/talentrail/talentrail/internal/api/middleware"
)

type Deps struct {
	Auth        *handlers.AuthHandler
	Application *handlers.ApplicationHandler
	JobPost     *handlers.JobPostHandler
	Resume      *handlers.ResumeHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/auth/register", d.Auth.Register)
	r.POST("/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	// application lifecycle
	auth.POST("/applications/:job_post_id", d.Application.Apply)
	auth.GET("/applications/all", d.Application.ListMine)
	auth.GET("/applications/history/:id", d.Application.History)
	auth.PATCH("/applications/withdraw/:id", d.Application.Withdraw)
	auth.PATCH("/applications/saved/:job_post_id", d.Application.ToggleSave)
	auth.GET("/applications/:id", d.Application.Get)

	// job posts
	auth.GET("/job-posts", d.JobPost.ListAvailable)
	auth.GET("/job-posts/:job_post_id", d.JobPost.Get)

	recruiter := auth.Group("/")
	recruiter.Use(middleware.RequireRecruiter())
	recruiter.POST("/job-posts", d.JobPost.Create)
	recruiter.PATCH("/job-posts/:job_post_id/close", d.JobPost.Close)
	recruiter.PUT("/job-posts/:job_post_id/:user_id", d.Application.UpdateStatus)

	// resumes
	auth.POST("/resumes/upload", d.Resume.Upload)
	auth.POST("/resumes/generate", d.Resume.Generate)
	auth.POST("/resumes/cover-letter", d.Resume.CoverLetter)
	auth.GET("/resumes", d.Resume.List)
}
