package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY TEST DOUBLES
// ══════════════════════════════════════════════════════════════════════════════

// seqIDs generates deterministic identifiers.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(e shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// fakeAppRepo is an in-memory application.Repository that enforces the
// per-opportunity uniqueness the way the schema does.
type fakeAppRepo struct {
	mu   sync.Mutex
	apps map[string]*application.Application
	seq  int
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: make(map[string]*application.Application)}
}

func (r *fakeAppRepo) Create(_ context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.apps {
		if existing.StudentID == app.StudentID && existing.Opportunity == app.Opportunity {
			return shared.ErrDuplicateApplication
		}
	}
	cp := *app
	r.seq++
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeAppRepo) GetByID(_ context.Context, id string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, shared.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (r *fakeAppRepo) UpdateStatus(_ context.Context, id string, status application.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return shared.ErrApplicationNotFound
	}
	app.Status = status
	return nil
}

func (r *fakeAppRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[id]; !ok {
		return shared.ErrApplicationNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeAppRepo) ListByStudent(_ context.Context, studentID string) ([]*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
	r.mu.Lock()
	defer r.mu.Unlock()

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

// fakeProgressRepo is an in-memory progress.Repository keyed by
// application ID. ListByStudent consults the application repo so the
// orphan filtering matches the SQL join.
type fakeProgressRepo struct {
	mu      sync.Mutex
	entries map[string]*progress.Entry
	apps    *fakeAppRepo

	failSetSubmission bool
	ensureCalls       int
}

func newFakeProgressRepo(apps *fakeAppRepo) *fakeProgressRepo {
	return &fakeProgressRepo{entries: make(map[string]*progress.Entry), apps: apps}
}

func (r *fakeProgressRepo) EnsureEntry(_ context.Context, entry *progress.Entry) (*progress.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureCalls++
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
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[applicationID]
	if !ok {
		return nil, shared.ErrEntryNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *fakeProgressRepo) AppendUpdate(_ context.Context, applicationID string, upd progress.UpdateRecord, status progress.CurrentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[applicationID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	entry.Updates = append(entry.Updates, progress.Update(upd))
	entry.CurrentStatus = status
	return nil
}

func (r *fakeProgressRepo) SetSubmission(_ context.Context, applicationID string, sub progress.Submission) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failSetSubmission {
		return "", shared.ErrInternal
	}
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
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[applicationID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	entry.Remarks = append(entry.Remarks, progress.Remark{
		ID:         rem.ID,
		AuthorID:   rem.AuthorID,
		AuthorName: rem.AuthorName,
		Text:       rem.Text,
		CreatedAt:  rem.CreatedAt,
	})
	return nil
}

func (r *fakeProgressRepo) AddReply(_ context.Context, applicationID string, rep progress.ReplyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[applicationID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	for i := range entry.Remarks {
		if entry.Remarks[i].ID == rep.RemarkID {
			entry.Remarks[i].Replies = append(entry.Remarks[i].Replies, progress.Reply{
				ID:         rep.ID,
				AuthorID:   rep.AuthorID,
				AuthorName: rep.AuthorName,
				Text:       rep.Text,
				CreatedAt:  rep.CreatedAt,
			})
			return nil
		}
	}
	return shared.ErrRemarkNotFound
}

func (r *fakeProgressRepo) ListByStudent(ctx context.Context, studentID string) ([]*progress.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*progress.Entry
	for _, entry := range r.entries {
		if entry.StudentID != studentID {
			continue
		}
		// Mirror the SQL join: only entries whose application still
		// exists in the Accepted state surface.
		app, err := r.apps.GetByID(ctx, entry.ApplicationID)
		if err != nil || !app.IsAccepted() {
			continue
		}
		cp := *entry
		out = append(out, &cp)
	}
	return out, nil
}

// fakeRegistry is an in-memory opportunity.Registry.
type fakeRegistry struct {
	mu         sync.Mutex
	listings   map[opportunity.Ref]opportunity.Resolution
	applicants map[opportunity.Ref][]string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		listings:   make(map[opportunity.Ref]opportunity.Resolution),
		applicants: make(map[opportunity.Ref][]string),
	}
}

func (r *fakeRegistry) add(res opportunity.Resolution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[res.Ref] = res
}

func (r *fakeRegistry) remove(ref opportunity.Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listings, ref)
}

func (r *fakeRegistry) Resolve(_ context.Context, ref opportunity.Ref) (opportunity.Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.listings[ref]; ok {
		return res, nil
	}
	return opportunity.Resolution{Ref: ref, Exists: false}, nil
}

func (r *fakeRegistry) AddApplicant(_ context.Context, ref opportunity.Ref, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.applicants[ref] {
		if existing == studentID {
			return nil
		}
	}
	r.applicants[ref] = append(r.applicants[ref], studentID)
	return nil
}

// fakeStore is an in-memory document.Store that records deletions.
type fakeStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	seq     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (s *fakeStore) Save(_ context.Context, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	key := fmt.Sprintf("doc-%d", s.seq)
	s.files[key] = data
	return key, nil
}

func (s *fakeStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.files[key]
	if !ok {
		return nil, shared.ErrNoSubmission
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}
