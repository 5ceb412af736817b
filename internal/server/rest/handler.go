package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/dmitrijs2005/kinsync/internal/server/services"
	"github.com/gin-gonic/gin"
)

type pushRequest struct {
	ClientID string          `json:"clientId" binding:"required"`
	Changes  []models.Change `json:"changes" binding:"required,dive"`
}

// push applies a batch. Per-change outcomes stay server-side: the caller
// always gets {"status":"ok"} once the batch has been processed.
func (s *HTTPServer) push(c *gin.Context) {
	var req pushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	workspaceID := c.GetString(workspaceIDKey)

	outcomes, err := s.sync.Push(ctx, workspaceID, c.GetString(userIDKey), req.ClientID, req.Changes)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "internal error")
		return
	}

	applied := 0
	for _, o := range outcomes {
		if o.Applied {
			applied++
		}
	}
	s.logger.Info(ctx, "push processed", "workspace", workspaceID, "client", req.ClientID,
		"changes", len(req.Changes), "applied", applied)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) pull(c *gin.Context) {
	res, err := s.sync.Pull(c.Request.Context(), c.GetString(workspaceIDKey), c.GetString(userIDKey),
		c.Query("cursor"), c.Query("clientId"))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCursor) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) state(c *gin.Context) {
	clientID := c.Query("clientId")
	if clientID == "" {
		abortWithError(c, http.StatusBadRequest, "clientId is required")
		return
	}

	st, err := s.sync.State(c.Request.Context(), c.GetString(workspaceIDKey), c.GetString(userIDKey), clientID)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, st)
}

func (s *HTTPServer) requestUpload(c *gin.Context) {
	task, err := s.attachments.RequestUpload(c.Request.Context(), c.GetString(workspaceIDKey), c.GetString(userIDKey))
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, task)
}

type completeUploadRequest struct {
	Key string `json:"key" binding:"required"`
}

func (s *HTTPServer) completeUpload(c *gin.Context) {
	var req completeUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.attachments.CompleteUpload(c.Request.Context(), c.GetString(workspaceIDKey), req.Key); err != nil {
		s.attachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type downloadRequest struct {
	Key string `form:"key" binding:"required"`
}

func (s *HTTPServer) downloadURL(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	url, err := s.attachments.DownloadURL(c.Request.Context(), c.GetString(workspaceIDKey), req.Key)
	if err != nil {
		s.attachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *HTTPServer) attachmentError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "attachment not found")
		return
	}
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, "internal error")
}

var (
	_ SyncService       = (*services.SyncService)(nil)
	_ MembershipChecker = (*services.MembershipService)(nil)
	_ AttachmentService = (*services.AttachmentService)(nil)
)
