package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Auditor records ledger postings.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo  Repository
	audit Auditor
}

func NewService(repo Repository, audit Auditor) *Service {
	return &Service{repo: repo, audit: audit}
}

// Record validates the movement before any write, then posts it atomically
// together with the stock change.
func (s *Service) Record(ctx context.Context, req RecordRequest) (Entry, error) {
	if !req.Type.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown entry type %q", shared.ErrValidation, req.Type)
	}
	if req.Quantity <= 0 {
		return Entry{}, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	if req.ProductID <= 0 {
		return Entry{}, fmt.Errorf("%w: product id is required", shared.ErrValidation)
	}

	entry := Entry{
		CreatedAt: time.Now(),
		Type:      req.Type,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	}
	if req.Date != nil {
		entry.CreatedAt = *req.Date
	}

	recorded, err := s.repo.Record(ctx, entry)
	if err != nil {
		return Entry{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "ledger_post",
			Entity:   "inventory_transaction",
			EntityID: fmt.Sprintf("%d", recorded.ID),
			Meta: map[string]any{
				"type":       recorded.Type,
				"product_id": recorded.ProductID,
				"quantity":   recorded.Quantity,
			},
		})
	}
	return recorded, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	return s.repo.List(ctx, filter)
}
