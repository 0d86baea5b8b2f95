package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentrail/talentrail/internal/models"
	"github.com/talentrail/talentrail/internal/services"
	"github.com/talentrail/talentrail/internal/utils"
)

type JobPostHandler struct {
	svc services.JobPostService
}

func NewJobPostHandler(svc services.JobPostService) *JobPostHandler {
	return &JobPostHandler{svc: svc}
}

type CreateJobPostRequest struct {
	Title       string    `json:"title" binding:"required"`
	Company     string    `json:"company"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Level       string    `json:"level"`
	Department  string    `json:"department"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

func (h *JobPostHandler) Create(c *gin.Context) {
	recruiterID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateJobPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "JobPostHandler.Create", "invalid request body", err))
		return
	}

	post, err := h.svc.Create(c.Request.Context(), recruiterID, &models.JobPost{
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		Type:        req.Type,
		Level:       req.Level,
		Department:  req.Department,
		Deadline:    req.Deadline,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"job_post": post})
}

func (h *JobPostHandler) Get(c *gin.Context) {
	post, err := h.svc.Get(c.Request.Context(), c.Param("job_post_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_post": post})
}

func (h *JobPostHandler) ListAvailable(c *gin.Context) {
	var f models.JobPostFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "JobPostHandler.ListAvailable", "invalid query parameters", err))
		return
	}

	posts, err := h.svc.ListAvailable(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_posts": posts})
}

func (h *JobPostHandler) Close(c *gin.Context) {
	recruiterID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Close(c.Request.Context(), recruiterID, c.Param("job_post_id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job post closed"})
}
