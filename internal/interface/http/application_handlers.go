package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collab-hub/collab-portal/internal/application/command"
	"github.com/collab-hub/collab-portal/internal/application/query"
	"github.com/collab-hub/collab-portal/internal/domain/application"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// ApplicationHandlers serves the application lifecycle endpoints.
type ApplicationHandlers struct {
	submit   *command.SubmitApplicationHandler
	status   *command.SetApplicationStatusHandler
	withdraw *command.WithdrawApplicationHandler
	listMine *query.ListMyApplicationsHandler
	listFor  *query.ListApplicantsHandler
}

// NewApplicationHandlers creates the handler set.
func NewApplicationHandlers(
	submit *command.SubmitApplicationHandler,
	status *command.SetApplicationStatusHandler,
	withdraw *command.WithdrawApplicationHandler,
	listMine *query.ListMyApplicationsHandler,
	listFor *query.ListApplicantsHandler,
) *ApplicationHandlers {
	return &ApplicationHandlers{
		submit:   submit,
		status:   status,
		withdraw: withdraw,
		listMine: listMine,
		listFor:  listFor,
	}
}

// submitRequest is the body of POST /opportunities/:type/:id/applications.
type submitRequest struct {
	FullName       string            `json:"full_name" binding:"required"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	CoverLetter    string            `json:"cover_letter"`
	ResumeFileKey  string            `json:"resume_file_key"`
	ResumeFileName string            `json:"resume_file_name"`
	ResumeURL      string            `json:"resume_url"`
	Extra          map[string]string `json:"extra"`
}

// Submit handles POST /opportunities/:type/:id/applications.
func (h *ApplicationHandlers) Submit(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
		return
	}

	result, err := h.submit.Handle(c.Request.Context(), command.SubmitApplicationCommand{
		Actor:           a,
		OpportunityType: c.Param("type"),
		OpportunityID:   c.Param("id"),
		Payload: application.Payload{
			FullName:       req.FullName,
			Email:          req.Email,
			Phone:          req.Phone,
			CoverLetter:    req.CoverLetter,
			ResumeFileKey:  req.ResumeFileKey,
			ResumeFileName: req.ResumeFileName,
			ResumeURL:      req.ResumeURL,
			Extra:          req.Extra,
		},
		CorrelationID: c.GetHeader("X-Request-ID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, toApplicationDTO(result.Application))
}

// ListMine handles GET /applications/mine.
func (h *ApplicationHandlers) ListMine(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	result, err := h.listMine.Handle(c.Request.Context(), query.ListMyApplicationsQuery{Actor: a})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"applications": toApplicationDTOs(result.Applications)})
}

// ListApplicants handles GET /opportunities/:type/:id/applications.
func (h *ApplicationHandlers) ListApplicants(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	result, err := h.listFor.Handle(c.Request.Context(), query.ListApplicantsQuery{
		Actor:           a,
		OpportunityType: c.Param("type"),
		OpportunityID:   c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"opportunity_title": result.Opportunity.Title,
		"applications":      toApplicationDTOs(result.Applications),
	})
}

// setStatusRequest is the body of PATCH /applications/:id/status.
type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles PATCH /applications/:id/status.
func (h *ApplicationHandlers) SetStatus(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Message: "invalid request body"})
		return
	}

	result, err := h.status.Handle(c.Request.Context(), command.SetApplicationStatusCommand{
		Actor:         a,
		ApplicationID: c.Param("id"),
		NewStatus:     req.Status,
		CorrelationID: c.GetHeader("X-Request-ID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"application":   toApplicationDTO(result.Application),
		"old_status":    result.OldStatus.String(),
		"entry_created": result.EntryCreated,
	})
}

// Withdraw handles DELETE /applications/:id.
func (h *ApplicationHandlers) Withdraw(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	result, err := h.withdraw.Handle(c.Request.Context(), command.WithdrawApplicationCommand{
		Actor:         a,
		ApplicationID: c.Param("id"),
		CorrelationID: c.GetHeader("X-Request-ID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"application_id": result.ApplicationID, "withdrawn": true})
}
