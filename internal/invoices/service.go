package invoices

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// totalTolerance absorbs float drift between the client-computed total and
// subtotal minus discount.
const totalTolerance = 1e-9

// CustomerDirectory is the slice of the customer module checkout needs.
type CustomerDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// KeyStore guards checkout replays.
type KeyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Auditor records checkout and refund actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheBumper invalidates cached report aggregates after writes.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo      Repository
	customers CustomerDirectory
	keys      KeyStore
	audit     Auditor
	cache     CacheBumper
}

func NewService(repo Repository, customers CustomerDirectory, keys KeyStore, audit Auditor, cache CacheBumper) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		keys:      keys,
		audit:     audit,
		cache:     cache,
	}
}

// Checkout validates the cart and runs the atomic create. Validation happens
// entirely before any write; a failure after the idempotency key was claimed
// releases the key so the client may retry.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (Invoice, error) {
	invoice, err := s.buildInvoice(ctx, req)
	if err != nil {
		return Invoice{}, err
	}

	if req.IdempotencyKey != "" {
		if _, err := uuid.Parse(req.IdempotencyKey); err != nil {
			return Invoice{}, fmt.Errorf("%w: idempotency key must be a UUID", shared.ErrValidation)
		}
		if s.keys != nil {
			if err := s.keys.CheckAndInsert(ctx, req.IdempotencyKey, "invoices"); err != nil {
				return Invoice{}, err
			}
		}
	}

	created, err := s.repo.Create(ctx, invoice)
	if err != nil {
		if req.IdempotencyKey != "" && s.keys != nil {
			_ = s.keys.Delete(ctx, req.IdempotencyKey)
		}
		return Invoice{}, err
	}

	s.recordAudit(ctx, req.CashierID, "checkout", created.ID, map[string]any{
		"total": created.Total,
		"items": len(created.Items),
	})
	s.bumpCache(ctx)
	return created, nil
}

func (s *Service) buildInvoice(ctx context.Context, req CheckoutRequest) (Invoice, error) {
	if len(req.Items) == 0 {
		return Invoice{}, fmt.Errorf("%w: cart is empty", shared.ErrValidation)
	}
	if !req.PaymentMethod.Valid() {
		return Invoice{}, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, req.PaymentMethod)
	}

	var subtotal float64
	items := make([]LineItem, 0, len(req.Items))
	for i, line := range req.Items {
		if line.Quantity <= 0 {
			return Invoice{}, fmt.Errorf("%w: line %d quantity must be positive", shared.ErrValidation, i+1)
		}
		if line.UnitPrice < 0 {
			return Invoice{}, fmt.Errorf("%w: line %d unit price must be >= 0", shared.ErrValidation, i+1)
		}
		lineTotal := float64(line.Quantity) * line.UnitPrice
		subtotal += lineTotal
		items = append(items, LineItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: lineTotal,
		})
	}

	if req.Discount < 0 || req.Discount > subtotal {
		return Invoice{}, fmt.Errorf("%w: discount must be within [0, subtotal]", shared.ErrValidation)
	}
	if math.Abs(req.Total-(subtotal-req.Discount)) > totalTolerance {
		return Invoice{}, fmt.Errorf("%w: total does not match subtotal minus discount", shared.ErrValidation)
	}

	if req.CustomerID != nil {
		ok, err := s.customers.Exists(ctx, *req.CustomerID)
		if err != nil {
			return Invoice{}, fmt.Errorf("check customer: %w", err)
		}
		if !ok {
			return Invoice{}, fmt.Errorf("customer %d: %w", *req.CustomerID, shared.ErrNotFound)
		}
	}

	return Invoice{
		ID:            req.ID,
		CustomerID:    req.CustomerID,
		CashierID:     req.CashierID,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		Status:        StatusPaid,
		Items:         items,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns the matching page plus pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Invoice, shared.Pagination, error) {
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = total
	}
	return invoices, shared.NewPagination(filter.Page, perPage, total), nil
}

// Refund flips a paid invoice to refunded. Stock is not restored and the
// line items stay untouched.
func (s *Service) Refund(ctx context.Context, id string) (Invoice, error) {
	if err := s.repo.MarkRefunded(ctx, id); err != nil {
		return Invoice{}, err
	}
	s.recordAudit(ctx, nil, "refund", id, nil)
	s.bumpCache(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actor *int64, action, invoiceID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor != nil {
		actorID = *actor
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "invoice",
		EntityID: invoiceID,
		Meta:     meta,
	})
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}
