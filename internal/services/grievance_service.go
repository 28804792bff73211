package services

import (
	"context"
	"log"
	"time"

	"github.com/civigo/grievance-backend/internal/auth"
	"github.com/civigo/grievance-backend/internal/config"
	"github.com/civigo/grievance-backend/internal/models"
	"github.com/civigo/grievance-backend/internal/repository"
)

// SubmitRequest carries the client-supplied submission fields. Ownership
// fields are deliberately absent: userId and createdBy always come from
// the authenticated caller, never the payload.
type SubmitRequest struct {
	Name        string `json:"name"`
	WardNo      string `json:"wardno"`
	PhoneNo     string `json:"phoneno"`
	AreaLimit   string `json:"arealimit,omitempty"`
	Subject     string `json:"subject"`
	Department  string `json:"department"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// GrievanceService owns the grievance lifecycle: creation, the chat
// append protocol, and the one-way status transition.
type GrievanceService struct {
	repo          repository.GrievanceRepository
	enricher      Enricher
	resolvePolicy config.ResolvePolicy

	now func() time.Time // test hook
}

func NewGrievanceService(repo repository.GrievanceRepository, enricher Enricher, policy config.ResolvePolicy) *GrievanceService {
	return &GrievanceService{
		repo:          repo,
		enricher:      enricher,
		resolvePolicy: policy,
		now:           time.Now,
	}
}

// Submit validates the payload, classifies it, and persists a new
// grievance owned by the caller. The full stored record is returned so
// the caller can render it without a follow-up read.
func (s *GrievanceService) Submit(ctx context.Context, req SubmitRequest, caller auth.Identity) (*models.Grievance, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	analysis := s.classify(ctx, req.Description, req.Subject)

	g := &models.Grievance{
		Name:        req.Name,
		WardNo:      req.WardNo,
		PhoneNo:     req.PhoneNo,
		AreaLimit:   req.AreaLimit,
		Subject:     req.Subject,
		Department:  req.Department,
		Address:     req.Address,
		Description: req.Description,

		UserID:    caller.ID,
		CreatedBy: caller.Name,

		Chats:      []models.ChatEntry{},
		AIAnalysis: &analysis,

		Status:     models.StatusInProgress,
		CreatedOn:  s.now(),
		ResolvedOn: nil,
	}

	return s.repo.Insert(ctx, g)
}

// classify runs the enrichment call synchronously; any failure degrades
// to the fixed fallback rather than blocking creation.
func (s *GrievanceService) classify(ctx context.Context, description, subject string) models.AIAnalysis {
	analysis, err := s.enricher.Classify(ctx, description, subject)
	if err != nil {
		log.Printf("enrichment failed, using fallback: %v", err)
		return FallbackAnalysis()
	}
	return analysis
}

func validateSubmit(req SubmitRequest) error {
	var fields []string
	if req.Name == "" {
		fields = append(fields, "name")
	}
	if req.WardNo == "" {
		fields = append(fields, "wardno")
	}
	if len(req.PhoneNo) < 10 {
		fields = append(fields, "phoneno")
	}
	if req.Subject == "" {
		fields = append(fields, "subject")
	}
	if req.Department == "" {
		fields = append(fields, "department")
	}
	if req.Address == "" {
		fields = append(fields, "address")
	}
	if req.Description == "" {
		fields = append(fields, "description")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// AppendChat appends one message to a grievance's chat thread. The
// thread only grows; the repository's atomic array push is the sole
// ordering guarantee between concurrent appends.
func (s *GrievanceService) AppendChat(ctx context.Context, id string, entry models.ChatEntry, caller auth.Identity) (*models.Grievance, error) {
	// Legacy-shaped input is normalized so only the structured shape is
	// ever written going forward.
	entry = entry.Normalized()

	var fields []string
	if entry.Sender == "" {
		fields = append(fields, "chat.sender")
	}
	if entry.Message == "" {
		fields = append(fields, "chat.message")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if entry.Timestamp == nil {
		now := s.now()
		entry.Timestamp = &now
	}

	return s.repo.PushChat(ctx, id, entry)
}

// Resolve performs the one-way "In progress" -> "Resolved" transition,
// stamping resolvedOn atomically with the status flip. Resolving an
// already-resolved grievance is not an error; it re-stamps resolvedOn,
// matching the reference behavior.
func (s *GrievanceService) Resolve(ctx context.Context, id string, caller auth.Identity) (*models.Grievance, error) {
	switch s.resolvePolicy {
	case config.ResolveOfficial:
		if !caller.IsOfficial() {
			return nil, ErrResolveForbidden
		}
	case config.ResolveOwnerOrOfficial:
		if !caller.IsOfficial() {
			g, err := s.repo.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if g.UserID != caller.ID {
				return nil, ErrResolveForbidden
			}
		}
	}

	return s.repo.SetResolved(ctx, id, s.now())
}

// ListForUser returns the caller's own grievances, newest first.
func (s *GrievanceService) ListForUser(ctx context.Context, caller auth.Identity) ([]models.Grievance, error) {
	return s.repo.FindByUser(ctx, caller.ID)
}

// ListAll returns every grievance, newest first.
func (s *GrievanceService) ListAll(ctx context.Context) ([]models.Grievance, error) {
	return s.repo.FindAll(ctx)
}
