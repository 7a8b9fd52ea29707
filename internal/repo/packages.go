package repo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PackageRepo struct{ base }

type PackagePatch struct {
	Name          *string
	Description   *string
	Cost          *decimal.Decimal
	Duration      *int
	MinCommitment *int
}

func (r *PackageRepo) Create(ctx context.Context, p *Package) error {
	if p.PID == uuid.Nil {
		p.PID = uuid.New()
	}
	q := psql.Insert("packages").
		Columns("pid", "name", "description", "cost", "duration", "min_commitment").
		Values(p.PID, p.Name, p.Description, p.Cost, p.Duration, p.MinCommitment).
		Suffix("RETURNING *")
	if err := r.get(ctx, p, q); err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	return nil
}

func (r *PackageRepo) Get(ctx context.Context, pid uuid.UUID) (*Package, error) {
	var p Package
	if err := r.get(ctx, &p, psql.Select("*").From("packages").Where(sq.Eq{"pid": pid})); err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

func (r *PackageRepo) List(ctx context.Context) ([]*Package, error) {
	out := []*Package{}
	if err := r.list(ctx, &out, psql.Select("*").From("packages").OrderBy("cost", "name")); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return out, nil
}

func (r *PackageRepo) Update(ctx context.Context, pid uuid.UUID, p PackagePatch) (*Package, error) {
	q := psql.Update("packages").Set("updated_at", time.Now().UTC())
	q = set(q, "name", p.Name)
	q = set(q, "description", p.Description)
	q = set(q, "cost", p.Cost)
	q = set(q, "duration", p.Duration)
	q = set(q, "min_commitment", p.MinCommitment)

	var out Package
	if err := r.get(ctx, &out, q.Where(sq.Eq{"pid": pid}).Suffix("RETURNING *")); err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}
	return &out, nil
}

func (r *PackageRepo) Delete(ctx context.Context, pid uuid.UUID) error {
	if err := r.exec(ctx, psql.Delete("packages").Where(sq.Eq{"pid": pid})); err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	return nil
}
