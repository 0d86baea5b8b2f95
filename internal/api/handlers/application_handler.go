package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentrail/talentrail/internal/models"
	"github.com/talentrail/talentrail/internal/services"
	"github.com/talentrail/talentrail/internal/utils"
)

type ApplicationHandler struct {
	svc services.ApplicationService
}

func NewApplicationHandler(svc services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

type ApplyRequest struct {
	Notes string `json:"notes"`
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ApplyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.Apply", "invalid request body", err))
			return
		}
	}

	rec, err := h.svc.Apply(c.Request.Context(), userID, c.Param("job_post_id"), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"job": rec})
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	views, err := h.svc.ListMine(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": views})
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rec, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": rec})
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rec, err := h.svc.Withdraw(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": rec})
}

type ToggleSaveRequest struct {
	IsSaved *bool `json:"is_saved" binding:"required"`
}

func (h *ApplicationHandler) ToggleSave(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ToggleSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.ToggleSave", "is_saved is required", err))
		return
	}

	msg, rec, err := h.svc.ToggleSave(c.Request.Context(), userID, c.Param("job_post_id"), *req.IsSaved)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg, "job": rec})
}

func (h *ApplicationHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entries, err := h.svc.History(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
}

// UpdateStatus is the recruiter path: PUT /job-posts/:job_post_id/:user_id.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	recruiterID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.UpdateStatus", "status is required", err))
		return
	}

	rec, err := h.svc.UpdateStatus(c.Request.Context(), recruiterID, c.Param("job_post_id"), c.Param("user_id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": rec})
}
