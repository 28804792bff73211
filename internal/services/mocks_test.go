package services

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/civigo/grievance-backend/internal/models"
	"github.com/civigo/grievance-backend/internal/repository"
)

// fakeGrievanceRepo is an in-memory GrievanceRepository. Mutations copy
// the stored record so tests can compare before/after snapshots.
type fakeGrievanceRepo struct {
	records map[string]*models.Grievance
}

func newFakeGrievanceRepo() *fakeGrievanceRepo {
	return &fakeGrievanceRepo{records: map[string]*models.Grievance{}}
}

func (f *fakeGrievanceRepo) Insert(ctx context.Context, g *models.Grievance) (*models.Grievance, error) {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	stored := *g
	f.records[g.ID.Hex()] = &stored
	return g, nil
}

func (f *fakeGrievanceRepo) FindByID(ctx context.Context, id string) (*models.Grievance, error) {
	g, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (f *fakeGrievanceRepo) FindByUser(ctx context.Context, userID string) ([]models.Grievance, error) {
	var out []models.Grievance
	for _, g := range f.records {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeGrievanceRepo) FindAll(ctx context.Context) ([]models.Grievance, error) {
	var out []models.Grievance
	for _, g := range f.records {
		out = append(out, *g)
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeGrievanceRepo) PushChat(ctx context.Context, id string, entry models.ChatEntry) (*models.Grievance, error) {
	g, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g.Chats = append(g.Chats, entry)
	out := *g
	return &out, nil
}

func (f *fakeGrievanceRepo) SetResolved(ctx context.Context, id string, at time.Time) (*models.Grievance, error) {
	g, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g.Status = models.StatusResolved
	g.ResolvedOn = &at
	out := *g
	return &out, nil
}

func sortNewestFirst(list []models.Grievance) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedOn.After(list[j].CreatedOn)
	})
}

// fakeUserRepo is an in-memory UserRepository keyed by email.
type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	if _, exists := f.users[u.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	stored := *u
	f.users[u.Email] = &stored
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

// stubEnricher returns a canned analysis or error.
type stubEnricher struct {
	analysis models.AIAnalysis
	err      error
	calls    int
}

func (s *stubEnricher) Classify(ctx context.Context, description, subject string) (models.AIAnalysis, error) {
	s.calls++
	if s.err != nil {
		return models.AIAnalysis{}, s.err
	}
	return s.analysis, nil
}
