// Package pricing manages the service packages clients can book against.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
)

type CreateRequest struct {
	Name          *string
	Description   string
	Cost          *decimal.Decimal
	Duration      *int
	MinCommitment int
}

type UpdateRequest struct {
	Name          *string
	Description   *string
	Cost          *decimal.Decimal
	Duration      *int
	MinCommitment *int
}

type Service interface {
	List(ctx context.Context) ([]*repo.Package, error)
	Get(ctx context.Context, pid uuid.UUID) (*repo.Package, error)
	Create(ctx context.Context, req CreateRequest) (*repo.Package, error)
	Update(ctx context.Context, pid uuid.UUID, req UpdateRequest) (*repo.Package, error)
	Delete(ctx context.Context, pid uuid.UUID) error
}

type pricingService struct {
	db *repo.Client
}

func New(db *repo.Client) Service {
	return &pricingService{db: db}
}

func (s *pricingService) List(ctx context.Context) ([]*repo.Package, error) {
	return s.db.Packages.List(ctx)
}

func (s *pricingService) Get(ctx context.Context, pid uuid.UUID) (*repo.Package, error) {
	p, err := s.db.Packages.Get(ctx, pid)
	if repo.IsNotFound(err) {
		return nil, ErrPackageNotFound
	}
	return p, err
}

func checkValues(cost *decimal.Decimal, duration *int) error {
	if cost != nil && cost.IsNegative() {
		return ErrInvalidCost
	}
	if duration != nil && *duration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

func (s *pricingService) Create(ctx context.Context, req CreateRequest) (*repo.Package, error) {
	switch {
	case req.Name == nil || strings.TrimSpace(*req.Name) == "":
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	case req.Cost == nil:
		return nil, fmt.Errorf("%w: cost", ErrMissingField)
	case req.Duration == nil:
		return nil, fmt.Errorf("%w: duration", ErrMissingField)
	}
	if err := checkValues(req.Cost, req.Duration); err != nil {
		return nil, err
	}

	p := &repo.Package{
		Name:          strings.TrimSpace(*req.Name),
		Description:   req.Description,
		Cost:          req.Cost.Round(2),
		Duration:      *req.Duration,
		MinCommitment: req.MinCommitment,
	}
	if err := s.db.Packages.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *pricingService) Update(ctx context.Context, pid uuid.UUID, req UpdateRequest) (*repo.Package, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	if err := checkValues(req.Cost, req.Duration); err != nil {
		return nil, err
	}
	if req.Cost != nil {
		c := req.Cost.Round(2)
		req.Cost = &c
	}

	p, err := s.db.Packages.Update(ctx, pid, repo.PackagePatch{
		Name:          req.Name,
		Description:   req.Description,
		Cost:          req.Cost,
		Duration:      req.Duration,
		MinCommitment: req.MinCommitment,
	})
	if repo.IsNotFound(err) {
		return nil, ErrPackageNotFound
	}
	return p, err
}

func (s *pricingService) Delete(ctx context.Context, pid uuid.UUID) error {
	err := s.db.Packages.Delete(ctx, pid)
	switch {
	case repo.IsNotFound(err):
		return ErrPackageNotFound
	case repo.IsForeignKeyViolation(err):
		return ErrPackageInUse
	}
	return err
}
