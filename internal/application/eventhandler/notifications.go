// Package eventhandler wires domain events to their side effects. The
// only side effect today is notification dispatch: every handler builds
// a message and hands it to the sink, swallowing failures.
package eventhandler

import (
	"context"
	"fmt"
	"time"

	"github.com/collab-hub/collab-portal/internal/domain/notification"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// NotificationDispatcher turns workflow events into user notifications.
// Dispatch is best-effort: a sink failure is logged, never returned to
// the workflow that raised the event.
type NotificationDispatcher struct {
	sink    notification.Sink
	ids     func() string
	log     *logger.Logger
	timeout time.Duration
}

// NewNotificationDispatcher creates a NotificationDispatcher.
func NewNotificationDispatcher(sink notification.Sink, ids func() string, log *logger.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		sink:    sink,
		ids:     ids,
		log:     log,
		timeout: 10 * time.Second,
	}
}

// Register subscribes the dispatcher to every event it cares about.
func (d *NotificationDispatcher) Register(bus shared.EventSubscriber) error {
	subs := map[shared.EventType]shared.EventHandler{
		shared.EventApplicationSubmitted:     d.onApplicationSubmitted,
		shared.EventApplicationStatusChanged: d.onStatusChanged,
		shared.EventApplicationWithdrawn:     d.onWithdrawn,
		shared.EventProgressUpdateAppended:   d.onProgressUpdate,
		shared.EventSubmissionUploaded:       d.onSubmissionUploaded,
		shared.EventRemarkAdded:              d.onRemarkAdded,
		shared.EventRemarkReplyAdded:         d.onReplyAdded,
	}
	for eventType, handler := range subs {
		if err := bus.Subscribe(eventType, handler); err != nil {
			return err
		}
	}
	return nil
}

// deliver pushes one notification into the sink, logging failures.
func (d *NotificationDispatcher) deliver(n notification.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	n.ID = d.ids()
	n.CreatedAt = time.Now().UTC()

	if err := d.sink.Send(ctx, n); err != nil {
		d.log.Error("notification delivery failed",
			logger.String("recipient_id", n.RecipientID),
			logger.String("title", n.Title),
			logger.Err(err))
	}
	return nil
}

func (d *NotificationDispatcher) onApplicationSubmitted(event shared.Event) error {
	e, ok := event.(shared.ApplicationSubmittedEvent)
	if !ok {
		return nil
	}
	return d.deliver(notification.Notification{
		RecipientID: e.StudentID,
		Title:       "Application submitted",
		Message:     fmt.Sprintf("Your application for %q was received and is pending review.", e.OpportunityTitle),
		Link:        "/applications/" + e.AggregateID(),
		Metadata: map[string]string{
			"application_id":   e.AggregateID(),
			"opportunity_type": e.OpportunityType,
			"opportunity_id":   e.OpportunityID,
		},
	})
}

func (d *NotificationDispatcher) onStatusChanged(event shared.Event) error {
	e, ok := event.(shared.ApplicationStatusChangedEvent)
	if !ok {
		return nil
	}

	var message string
	switch e.NewStatus {
	case "Accepted":
		message = fmt.Sprintf("Congratulations! Your application for %q was accepted.", e.OpportunityTitle)
	case "Rejected":
		message = fmt.Sprintf("Your application for %q was not successful this time.", e.OpportunityTitle)
	case "Reviewed":
		message = fmt.Sprintf("Your application for %q has been reviewed.", e.OpportunityTitle)
	default:
		message = fmt.Sprintf("Your application for %q is now %s.", e.OpportunityTitle, e.NewStatus)
	}

	return d.deliver(notification.Notification{
		RecipientID: e.StudentID,
		Title:       "Application " + e.NewStatus,
		Message:     message,
		Link:        "/applications/" + e.AggregateID(),
		Metadata: map[string]string{
			"application_id": e.AggregateID(),
			"old_status":     e.OldStatus,
			"new_status":     e.NewStatus,
		},
	})
}

func (d *NotificationDispatcher) onWithdrawn(event shared.Event) error {
	e, ok := event.(shared.ApplicationWithdrawnEvent)
	if !ok {
		return nil
	}
	// A withdrawn listing may no longer resolve; then there is no
	// poster to tell.
	if e.PosterID == "" {
		return nil
	}
	return d.deliver(notification.Notification{
		RecipientID: e.PosterID,
		Title:       "Application withdrawn",
		Message:     fmt.Sprintf("%s withdrew their application for %q.", e.StudentName, e.OpportunityTitle),
		Metadata: map[string]string{
			"application_id": e.AggregateID(),
			"student_id":     e.StudentID,
		},
	})
}

func (d *NotificationDispatcher) onProgressUpdate(event shared.Event) error {
	e, ok := event.(shared.ProgressUpdateAppendedEvent)
	if !ok {
		return nil
	}
	return d.deliver(notification.Notification{
		RecipientID: e.PosterID,
		Title:       "Progress update",
		Message:     fmt.Sprintf("%s reported %d%% on %q (%s).", e.StudentName, e.Percentage, e.ProjectTitle, e.Status),
		Link:        "/projects/" + e.ProjectID + "/progress/" + e.AggregateID(),
		Metadata: map[string]string{
			"application_id": e.AggregateID(),
			"project_id":     e.ProjectID,
		},
	})
}

func (d *NotificationDispatcher) onSubmissionUploaded(event shared.Event) error {
	e, ok := event.(shared.SubmissionUploadedEvent)
	if !ok {
		return nil
	}
	title := "Submission uploaded"
	message := fmt.Sprintf("%s uploaded %q for %q.", e.StudentName, e.Filename, e.ProjectTitle)
	if e.Replaced {
		title = "Submission replaced"
		message = fmt.Sprintf("%s replaced the submission for %q with %q.", e.StudentName, e.ProjectTitle, e.Filename)
	}
	return d.deliver(notification.Notification{
		RecipientID: e.PosterID,
		Title:       title,
		Message:     message,
		Link:        "/projects/" + e.ProjectID + "/progress/" + e.AggregateID(),
		Metadata: map[string]string{
			"application_id": e.AggregateID(),
			"filename":       e.Filename,
		},
	})
}

func (d *NotificationDispatcher) onRemarkAdded(event shared.Event) error {
	e, ok := event.(shared.RemarkAddedEvent)
	if !ok {
		return nil
	}
	return d.deliver(notification.Notification{
		RecipientID: e.StudentID,
		Title:       "New remark on your project",
		Message:     fmt.Sprintf("%s left a remark on your progress for %q.", e.AuthorName, e.ProjectTitle),
		Link:        "/progress/" + e.AggregateID() + "/remarks/" + e.RemarkID,
		Metadata: map[string]string{
			"application_id": e.AggregateID(),
			"remark_id":      e.RemarkID,
		},
	})
}

func (d *NotificationDispatcher) onReplyAdded(event shared.Event) error {
	e, ok := event.(shared.RemarkReplyAddedEvent)
	if !ok {
		return nil
	}
	return d.deliver(notification.Notification{
		RecipientID: e.RecipientID,
		Title:       "New reply",
		Message:     fmt.Sprintf("%s replied on %q.", e.AuthorName, e.ProjectTitle),
		Link:        "/progress/" + e.AggregateID() + "/remarks/" + e.RemarkID,
		Metadata: map[string]string{
			"application_id": e.AggregateID(),
			"remark_id":      e.RemarkID,
			"reply_id":       e.ReplyID,
		},
	})
}
