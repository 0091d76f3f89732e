package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collab-hub/collab-portal/internal/application/command"
	"github.com/collab-hub/collab-portal/internal/application/query"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// ProgressHandlers serves the progress ledger endpoints.
type ProgressHandlers struct {
	appendUpdate *command.AppendProgressUpdateHandler
	upload       *command.UploadSubmissionHandler
	addRemark    *command.AddRemarkHandler
	reply        *command.ReplyToRemarkHandler
	myProgress   *query.GetMyProgressHandler
	posterView   *query.GetPosterViewHandler
	download     *query.DownloadSubmissionHandler

	maxUploadBytes int64
	log            *logger.Logger
}

// NewProgressHandlers creates the handler set.
func NewProgressHandlers(
	appendUpdate *command.AppendProgressUpdateHandler,
	upload *command.UploadSubmissionHandler,
	addRemark *command.AddRemarkHandler,
	reply *command.ReplyToRemarkHandler,
	myProgress *query.GetMyProgressHandler,
	posterView *query.GetPosterViewHandler,
	download *query.DownloadSubmissionHandler,
	maxUploadBytes int64,
	log *logger.Logger,
) *ProgressHandlers {
	return &ProgressHandlers{
		appendUpdate:   appendUpdate,
		upload:         upload,
		addRemark:      addRemark,
		reply:          reply,
		myProgress:     myProgress,
		posterView:     posterView,
		download:       download,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// appendUpdateRequest is the body of POST /applications/:id/progress/updates.
type appendUpdateRequest struct {
	Text       string `json:"text" binding:"required"`
	Percentage *int   `json:"percentage"`
	Status     string `json:"status"`
}

// AppendUpdate handles POST /applications/:id/progress/updates.
func (h *ProgressHandlers) AppendUpdate(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	var req appendUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
		return
	}

	result, err := h.appendUpdate.Handle(c.Request.Context(), command.AppendProgressUpdateCommand{
		Actor:         a,
		ApplicationID: c.Param("id"),
		Text:          req.Text,
		Percentage:    req.Percentage,
		Status:        req.Status,
		CorrelationID: c.GetHeader("X-Request-ID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{
		"entry":      toEntryDTO(result.Entry),
		"percentage": result.Percentage,
		"status":     result.Status.String(),
	})
}

// MyProgress handles GET /progress/mine.
func (h *ProgressHandlers) MyProgress(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	result, err := h.myProgress.Handle(c.Request.Context(), query.GetMyProgressQuery{Actor: a})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"entries": toEntryDTOs(result.Entries)})
}

// PosterView handles GET /applications/:id/progress.
func (h *ProgressHandlers) PosterView(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	result, err := h.posterView.Handle(c.Request.Context(), query.GetPosterViewQuery{
		Actor:         a,
		ApplicationID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, toPosterViewDTO(result.View))
}

// UploadSubmission handles POST /applications/:id/progress/submission.
// Multipart form with a single "document" file field.
func (h *ProgressHandlers) UploadSubmission(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Message: "document file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Message: "failed to read document"})
		return
	}
	defer file.Close()

	result, err := h.upload.Handle(c.Request.Context(), command.UploadSubmissionCommand{
		Actor:         a,
		ApplicationID: c.Param("id"),
		Filename:      fileHeader.Filename,
		Content:       file,
		CorrelationID: c.GetHeader("X-Request-ID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{
		"filename": result.Filename,
		"replaced": result.Replaced,
	})
}

// DownloadSubmission handles GET /applications/:id/progress/submission.
func (h *ProgressHandlers) DownloadSubmission(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	result, err := h.download.Handle(c.Request.Context(), query.DownloadSubmissionQuery{
		Actor:         a,
		ApplicationID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	defer result.Content.Close()

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, result.Content); err != nil {
		// Headers are already out; all we can do is log.
		h.log.Warn("submission download interrupted",
			logger.ApplicationID(c.Param("id")),
			logger.Err(err))
	}
}

// remarkRequest is the body of POST /applications/:id/progress/remarks.
type remarkRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddRemark handles POST /applications/:id/progress/remarks.
func (h *ProgressHandlers) AddRemark(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	var req remarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
		return
	}

	result, err := h.addRemark.Handle(c.Request.Context(), command.AddRemarkCommand{
		Actor:         a,
		ApplicationID: c.Param("id"),
		Text:          req.Text,
		CorrelationID: c.GetHeader("X-Request-ID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"remark_id": result.RemarkID})
}

// replyRequest is the body of POST /applications/:id/progress/remarks/:remarkId/replies.
type replyRequest struct {
	Text string `json:"text" binding:"required"`
}

// ReplyToRemark handles POST /applications/:id/progress/remarks/:remarkId/replies.
func (h *ProgressHandlers) ReplyToRemark(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
		return
	}

	result, err := h.reply.Handle(c.Request.Context(), command.ReplyToRemarkCommand{
		Actor:         a,
		ApplicationID: c.Param("id"),
		RemarkID:      c.Param("remarkId"),
		Text:          req.Text,
		CorrelationID: c.GetHeader("X-Request-ID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"reply_id": result.ReplyID})
}
