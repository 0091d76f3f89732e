package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the workflow.
const (
	// Application lifecycle events
	EventApplicationSubmitted     EventType = "application.submitted"
	EventApplicationStatusChanged EventType = "application.status_changed"
	EventApplicationWithdrawn     EventType = "application.withdrawn"

	// Progress ledger events
	EventProgressUpdateAppended EventType = "progress.update_appended"
	EventSubmissionUploaded     EventType = "progress.submission_uploaded"
	EventRemarkAdded            EventType = "progress.remark_added"
	EventRemarkReplyAdded       EventType = "progress.reply_added"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Application Lifecycle Events
// ═══════════════════════════════════════════════════════════════════════════

// ApplicationSubmittedEvent is emitted when a student applies to an opportunity.
type ApplicationSubmittedEvent struct {
	BaseEvent
	StudentID        string `json:"student_id"`
	StudentName      string `json:"student_name"`
	OpportunityType  string `json:"opportunity_type"`
	OpportunityID    string `json:"opportunity_id"`
	OpportunityTitle string `json:"opportunity_title"`
	PosterID         string `json:"poster_id"`
}

// Payload implements Event interface.
func (e ApplicationSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":        e.StudentID,
		"student_name":      e.StudentName,
		"opportunity_type":  e.OpportunityType,
		"opportunity_id":    e.OpportunityID,
		"opportunity_title": e.OpportunityTitle,
		"poster_id":         e.PosterID,
	}
}

// NewApplicationSubmittedEvent creates a new ApplicationSubmittedEvent.
func NewApplicationSubmittedEvent(applicationID, studentID, studentName, oppType, oppID, oppTitle, posterID string) ApplicationSubmittedEvent {
	return ApplicationSubmittedEvent{
		BaseEvent:        NewBaseEvent(EventApplicationSubmitted, applicationID),
		StudentID:        studentID,
		StudentName:      studentName,
		OpportunityType:  oppType,
		OpportunityID:    oppID,
		OpportunityTitle: oppTitle,
		PosterID:         posterID,
	}
}

// ApplicationStatusChangedEvent is emitted when a poster reviews an application.
type ApplicationStatusChangedEvent struct {
	BaseEvent
	StudentID        string `json:"student_id"`
	OpportunityType  string `json:"opportunity_type"`
	OpportunityID    string `json:"opportunity_id"`
	OpportunityTitle string `json:"opportunity_title"`
	OldStatus        string `json:"old_status"`
	NewStatus        string `json:"new_status"`
	ChangedBy        string `json:"changed_by"`
}

// Payload implements Event interface.
func (e ApplicationStatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":        e.StudentID,
		"opportunity_type":  e.OpportunityType,
		"opportunity_id":    e.OpportunityID,
		"opportunity_title": e.OpportunityTitle,
		"old_status":        e.OldStatus,
		"new_status":        e.NewStatus,
		"changed_by":        e.ChangedBy,
	}
}

// NewApplicationStatusChangedEvent creates a new ApplicationStatusChangedEvent.
func NewApplicationStatusChangedEvent(applicationID, studentID, oppType, oppID, oppTitle, oldStatus, newStatus, changedBy string) ApplicationStatusChangedEvent {
	return ApplicationStatusChangedEvent{
		BaseEvent:        NewBaseEvent(EventApplicationStatusChanged, applicationID),
		StudentID:        studentID,
		OpportunityType:  oppType,
		OpportunityID:    oppID,
		OpportunityTitle: oppTitle,
		OldStatus:        oldStatus,
		NewStatus:        newStatus,
		ChangedBy:        changedBy,
	}
}

// ApplicationWithdrawnEvent is emitted when a student withdraws an application.
type ApplicationWithdrawnEvent struct {
	BaseEvent
	StudentID        string `json:"student_id"`
	StudentName      string `json:"student_name"`
	OpportunityType  string `json:"opportunity_type"`
	OpportunityID    string `json:"opportunity_id"`
	OpportunityTitle string `json:"opportunity_title"`
	PosterID         string `json:"poster_id"`
}

// Payload implements Event interface.
func (e ApplicationWithdrawnEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":        e.StudentID,
		"student_name":      e.StudentName,
		"opportunity_type":  e.OpportunityType,
		"opportunity_id":    e.OpportunityID,
		"opportunity_title": e.OpportunityTitle,
		"poster_id":         e.PosterID,
	}
}

// NewApplicationWithdrawnEvent creates a new ApplicationWithdrawnEvent.
func NewApplicationWithdrawnEvent(applicationID, studentID, studentName, oppType, oppID, oppTitle, posterID string) ApplicationWithdrawnEvent {
	return ApplicationWithdrawnEvent{
		BaseEvent:        NewBaseEvent(EventApplicationWithdrawn, applicationID),
		StudentID:        studentID,
		StudentName:      studentName,
		OpportunityType:  oppType,
		OpportunityID:    oppID,
		OpportunityTitle: oppTitle,
		PosterID:         posterID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Ledger Events
// ═══════════════════════════════════════════════════════════════════════════

// ProgressUpdateAppendedEvent is emitted when a student appends a progress update.
type ProgressUpdateAppendedEvent struct {
	BaseEvent
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	ProjectID    string `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	PosterID     string `json:"poster_id"`
	Percentage   int    `json:"percentage"`
	Status       string `json:"status"`
}

// Payload implements Event interface.
func (e ProgressUpdateAppendedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":    e.StudentID,
		"student_name":  e.StudentName,
		"project_id":    e.ProjectID,
		"project_title": e.ProjectTitle,
		"poster_id":     e.PosterID,
		"percentage":    e.Percentage,
		"status":        e.Status,
	}
}

// NewProgressUpdateAppendedEvent creates a new ProgressUpdateAppendedEvent.
func NewProgressUpdateAppendedEvent(applicationID, studentID, studentName, projectID, projectTitle, posterID string, percentage int, status string) ProgressUpdateAppendedEvent {
	return ProgressUpdateAppendedEvent{
		BaseEvent:    NewBaseEvent(EventProgressUpdateAppended, applicationID),
		StudentID:    studentID,
		StudentName:  studentName,
		ProjectID:    projectID,
		ProjectTitle: projectTitle,
		PosterID:     posterID,
		Percentage:   percentage,
		Status:       status,
	}
}

// SubmissionUploadedEvent is emitted when a submission document is stored.
type SubmissionUploadedEvent struct {
	BaseEvent
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	ProjectID    string `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	PosterID     string `json:"poster_id"`
	UploadedBy   string `json:"uploaded_by"`
	Filename     string `json:"filename"`
	Replaced     bool   `json:"replaced"`
}

// Payload implements Event interface.
func (e SubmissionUploadedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":    e.StudentID,
		"student_name":  e.StudentName,
		"project_id":    e.ProjectID,
		"project_title": e.ProjectTitle,
		"poster_id":     e.PosterID,
		"uploaded_by":   e.UploadedBy,
		"filename":      e.Filename,
		"replaced":      e.Replaced,
	}
}

// NewSubmissionUploadedEvent creates a new SubmissionUploadedEvent.
func NewSubmissionUploadedEvent(applicationID, studentID, studentName, projectID, projectTitle, posterID, uploadedBy, filename string, replaced bool) SubmissionUploadedEvent {
	return SubmissionUploadedEvent{
		BaseEvent:    NewBaseEvent(EventSubmissionUploaded, applicationID),
		StudentID:    studentID,
		StudentName:  studentName,
		ProjectID:    projectID,
		ProjectTitle: projectTitle,
		PosterID:     posterID,
		UploadedBy:   uploadedBy,
		Filename:     filename,
		Replaced:     replaced,
	}
}

// RemarkAddedEvent is emitted when the project poster leaves a remark.
type RemarkAddedEvent struct {
	BaseEvent
	RemarkID     string `json:"remark_id"`
	StudentID    string `json:"student_id"`
	ProjectID    string `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	AuthorID     string `json:"author_id"`
	AuthorName   string `json:"author_name"`
}

// Payload implements Event interface.
func (e RemarkAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"remark_id":     e.RemarkID,
		"student_id":    e.StudentID,
		"project_id":    e.ProjectID,
		"project_title": e.ProjectTitle,
		"author_id":     e.AuthorID,
		"author_name":   e.AuthorName,
	}
}

// NewRemarkAddedEvent creates a new RemarkAddedEvent.
func NewRemarkAddedEvent(applicationID, remarkID, studentID, projectID, projectTitle, authorID, authorName string) RemarkAddedEvent {
	return RemarkAddedEvent{
		BaseEvent:    NewBaseEvent(EventRemarkAdded, applicationID),
		RemarkID:     remarkID,
		StudentID:    studentID,
		ProjectID:    projectID,
		ProjectTitle: projectTitle,
		AuthorID:     authorID,
		AuthorName:   authorName,
	}
}

// RemarkReplyAddedEvent is emitted when either party replies under a remark.
type RemarkReplyAddedEvent struct {
	BaseEvent
	RemarkID     string `json:"remark_id"`
	ReplyID      string `json:"reply_id"`
	ProjectTitle string `json:"project_title"`
	AuthorID     string `json:"author_id"`
	AuthorName   string `json:"author_name"`
	RecipientID  string `json:"recipient_id"`
}

// Payload implements Event interface.
func (e RemarkReplyAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"remark_id":     e.RemarkID,
		"reply_id":      e.ReplyID,
		"project_title": e.ProjectTitle,
		"author_id":     e.AuthorID,
		"author_name":   e.AuthorName,
		"recipient_id":  e.RecipientID,
	}
}

// NewRemarkReplyAddedEvent creates a new RemarkReplyAddedEvent.
func NewRemarkReplyAddedEvent(applicationID, remarkID, replyID, projectTitle, authorID, authorName, recipientID string) RemarkReplyAddedEvent {
	return RemarkReplyAddedEvent{
		BaseEvent:    NewBaseEvent(EventRemarkReplyAdded, applicationID),
		RemarkID:     remarkID,
		ReplyID:      replyID,
		ProjectTitle: projectTitle,
		AuthorID:     authorID,
		AuthorName:   authorName,
		RecipientID:  recipientID,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
