package query

import (
	"bytes"
	"context"
	"io"
	"sort"

	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY TEST DOUBLES
// Read-side fakes: queries never mutate, so these skip locking.
// ══════════════════════════════════════════════════════════════════════════════

type fakeAppRepo struct {
	apps map[string]*application.Application
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: make(map[string]*application.Application)}
}

func (r *fakeAppRepo) Create(_ context.Context, app *application.Application) error {
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeAppRepo) GetByID(_ context.Context, id string) (*application.Application, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, shared.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (r *fakeAppRepo) UpdateStatus(_ context.Context, id string, status application.Status) error {
	app, ok := r.apps[id]
	if !ok {
		return shared.ErrApplicationNotFound
	}
	app.Status = status
	return nil
}

func (r *fakeAppRepo) Delete(_ context.Context, id string) error {
	delete(r.apps, id)
	return nil
}

func (r *fakeAppRepo) ListByStudent(_ context.Context, studentID string) ([]*application.Application, error) {
	var out []*application.Application
	for _, app := range r.apps {
		if app.StudentID == studentID {
			cp := *app
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeAppRepo) ListByOpportunity(_ context.Context, ref opportunity.Ref) ([]*application.Application, error) {
	var out []*application.Application
	for _, app := range r.apps {
		if app.Opportunity == ref {
			cp := *app
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeProgressRepo struct {
	entries map[string]*progress.Entry
	apps    *fakeAppRepo
}

func newFakeProgressRepo(apps *fakeAppRepo) *fakeProgressRepo {
	return &fakeProgressRepo{entries: make(map[string]*progress.Entry), apps: apps}
}

func (r *fakeProgressRepo) EnsureEntry(_ context.Context, entry *progress.Entry) (*progress.Entry, error) {
	if existing, ok := r.entries[entry.ApplicationID]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *entry
	r.entries[entry.ApplicationID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeProgressRepo) GetByApplicationID(_ context.Context, applicationID string) (*progress.Entry, error) {
	entry, ok := r.entries[applicationID]
	if !ok {
		return nil, shared.ErrEntryNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *fakeProgressRepo) AppendUpdate(_ context.Context, applicationID string, upd progress.UpdateRecord, status progress.CurrentStatus) error {
	entry, ok := r.entries[applicationID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	entry.Updates = append(entry.Updates, progress.Update(upd))
	entry.CurrentStatus = status
	return nil
}

func (r *fakeProgressRepo) SetSubmission(_ context.Context, applicationID string, sub progress.Submission) (string, error) {
	entry, ok := r.entries[applicationID]
	if !ok {
		return "", shared.ErrEntryNotFound
	}
	previous := ""
	if entry.Submission != nil {
		previous = entry.Submission.DocumentKey
	}
	cp := sub
	entry.Submission = &cp
	return previous, nil
}

func (r *fakeProgressRepo) AddRemark(_ context.Context, applicationID string, rem progress.RemarkRecord) error {
	entry, ok := r.entries[applicationID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	entry.Remarks = append(entry.Remarks, progress.Remark{
		ID: rem.ID, AuthorID: rem.AuthorID, AuthorName: rem.AuthorName,
		Text: rem.Text, CreatedAt: rem.CreatedAt,
	})
	return nil
}

func (r *fakeProgressRepo) AddReply(_ context.Context, applicationID string, rep progress.ReplyRecord) error {
	entry, ok := r.entries[applicationID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	for i := range entry.Remarks {
		if entry.Remarks[i].ID == rep.RemarkID {
			entry.Remarks[i].Replies = append(entry.Remarks[i].Replies, progress.Reply{
				ID: rep.ID, AuthorID: rep.AuthorID, AuthorName: rep.AuthorName,
				Text: rep.Text, CreatedAt: rep.CreatedAt,
			})
			return nil
		}
	}
	return shared.ErrRemarkNotFound
}

func (r *fakeProgressRepo) ListByStudent(ctx context.Context, studentID string) ([]*progress.Entry, error) {
	var out []*progress.Entry
	for _, entry := range r.entries {
		if entry.StudentID != studentID {
			continue
		}
		app, err := r.apps.GetByID(ctx, entry.ApplicationID)
		if err != nil || !app.IsAccepted() {
			continue
		}
		cp := *entry
		out = append(out, &cp)
	}
	return out, nil
}

type fakeRegistry struct {
	listings map[opportunity.Ref]opportunity.Resolution
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{listings: make(map[opportunity.Ref]opportunity.Resolution)}
}

func (r *fakeRegistry) Resolve(_ context.Context, ref opportunity.Ref) (opportunity.Resolution, error) {
	if res, ok := r.listings[ref]; ok {
		return res, nil
	}
	return opportunity.Resolution{Ref: ref, Exists: false}, nil
}

func (r *fakeRegistry) AddApplicant(_ context.Context, _ opportunity.Ref, _ string) error {
	return nil
}

func readerOf(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}

type fakeStore struct {
	files map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (s *fakeStore) Save(_ context.Context, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := "doc-1"
	s.files[key] = data
	return key, nil
}

func (s *fakeStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.files[key]
	if !ok {
		return nil, shared.ErrNoSubmission
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	delete(s.files, key)
	return nil
}
