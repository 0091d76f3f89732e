package http

import (
	"time"

	"github.com/collab-hub/collab-portal/internal/application/query"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION DTOs
// ══════════════════════════════════════════════════════════════════════════════

// applicationDTO is the wire form of an application.
type applicationDTO struct {
	ID              string              `json:"id"`
	StudentID       string              `json:"student_id"`
	StudentName     string              `json:"student_name"`
	OpportunityType string              `json:"opportunity_type"`
	OpportunityID   string              `json:"opportunity_id"`
	Status          string              `json:"status"`
	Payload         application.Payload `json:"payload"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toApplicationDTO(a *application.Application) applicationDTO {
	return applicationDTO{
		ID:              a.ID,
		StudentID:       a.StudentID,
		StudentName:     a.StudentName,
		OpportunityType: a.Opportunity.Type.String(),
		OpportunityID:   a.Opportunity.ID,
		Status:          a.Status.String(),
		Payload:         a.Payload,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toApplicationDTOs(apps []*application.Application) []applicationDTO {
	out := make([]applicationDTO, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationDTO(a))
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS DTOs
// ══════════════════════════════════════════════════════════════════════════════

type updateDTO struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Percentage int       `json:"percentage"`
	CreatedAt  time.Time `json:"created_at"`
}

type replyDTO struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type remarkDTO struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Text       string     `json:"text"`
	Replies    []replyDTO `json:"replies"`
	CreatedAt  time.Time  `json:"created_at"`
}

type submissionDTO struct {
	Filename   string    `json:"filename"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// entryDTO is the student-facing wire form of a ledger entry, full history.
type entryDTO struct {
	ID            string         `json:"id"`
	ApplicationID string         `json:"application_id"`
	ProjectID     string         `json:"project_id"`
	ProjectTitle  string         `json:"project_title"`
	CurrentStatus string         `json:"current_status"`
	Updates       []updateDTO    `json:"updates"`
	Submission    *submissionDTO `json:"submission,omitempty"`
	Remarks       []remarkDTO    `json:"remarks"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// posterViewDTO is the poster-facing projection: latest update only,
// submission gated by eligibility.
type posterViewDTO struct {
	ApplicationID string         `json:"application_id"`
	StudentID     string         `json:"student_id"`
	StudentName   string         `json:"student_name"`
	ProjectID     string         `json:"project_id"`
	ProjectTitle  string         `json:"project_title"`
	CurrentStatus string         `json:"current_status"`
	LatestUpdate  *updateDTO     `json:"latest_update,omitempty"`
	Submission    *submissionDTO `json:"submission,omitempty"`
	Remarks       []remarkDTO    `json:"remarks"`
}

func toUpdateDTO(u progress.Update) updateDTO {
	return updateDTO{ID: u.ID, Text: u.Text, Percentage: u.Percentage, CreatedAt: u.CreatedAt}
}

func toRemarkDTOs(remarks []progress.Remark) []remarkDTO {
	out := make([]remarkDTO, 0, len(remarks))
	for _, r := range remarks {
		replies := make([]replyDTO, 0, len(r.Replies))
		for _, rep := range r.Replies {
			replies = append(replies, replyDTO{
				ID:         rep.ID,
				AuthorID:   rep.AuthorID,
				AuthorName: rep.AuthorName,
				Text:       rep.Text,
				CreatedAt:  rep.CreatedAt,
			})
		}
		out = append(out, remarkDTO{
			ID:         r.ID,
			AuthorID:   r.AuthorID,
			AuthorName: r.AuthorName,
			Text:       r.Text,
			Replies:    replies,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out
}

func toSubmissionDTO(s *progress.Submission) *submissionDTO {
	if s == nil {
		return nil
	}
	return &submissionDTO{
		Filename:   s.Filename,
		UploadedBy: s.UploadedBy,
		UploadedAt: s.UploadedAt,
	}
}

func toEntryDTO(e *progress.Entry) entryDTO {
	updates := make([]updateDTO, 0, len(e.Updates))
	for _, u := range e.Updates {
		updates = append(updates, toUpdateDTO(u))
	}

	return entryDTO{
		ID:            e.ID,
		ApplicationID: e.ApplicationID,
		ProjectID:     e.ProjectID,
		ProjectTitle:  e.ProjectTitle,
		CurrentStatus: e.CurrentStatus.String(),
		Updates:       updates,
		Submission:    toSubmissionDTO(e.Submission),
		Remarks:       toRemarkDTOs(e.Remarks),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toEntryDTOs(entries []*progress.Entry) []entryDTO {
	out := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryDTO(e))
	}
	return out
}

func toPosterViewDTO(v query.PosterView) posterViewDTO {
	dto := posterViewDTO{
		ApplicationID: v.ApplicationID,
		StudentID:     v.StudentID,
		StudentName:   v.StudentName,
		ProjectID:     v.ProjectID,
		ProjectTitle:  v.ProjectTitle,
		CurrentStatus: v.CurrentStatus.String(),
		Submission:    toSubmissionDTO(v.Submission),
		Remarks:       toRemarkDTOs(v.Remarks),
	}
	if v.LatestUpdate != nil {
		u := toUpdateDTO(*v.LatestUpdate)
		dto.LatestUpdate = &u
	}
	return dto
}
