package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuscoffee/CampusCoffeeGo/internal/domain"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/database"
	apperrors "github.com/campuscoffee/CampusCoffeeGo/pkg/errors"
)

// PosRepository implements repository.PosRepository using PostgreSQL.
type PosRepository struct {
	pool database.DBTX
}

// NewPosRepository creates a new PostgreSQL-backed POS repository.
func NewPosRepository(pool database.DBTX) *PosRepository {
	return &PosRepository{pool: pool}
}

const posColumns = `id, name, slug, description, type, street, house_number, postal_code, city, created_at, updated_at`

// Create inserts a new POS into the database.
func (r *PosRepository) Create(ctx context.Context, pos *domain.Pos) error {
	query := `
		INSERT INTO pos (id, name, slug, description, type, street, house_number, postal_code, city, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		pos.ID,
		pos.Name,
		pos.Slug,
		pos.Description,
		pos.Type,
		pos.Street,
		pos.HouseNumber,
		pos.PostalCode,
		pos.City,
		pos.CreatedAt,
		pos.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("pos", "name", pos.Name)
		}
		return fmt.Errorf("insert pos: %w", err)
	}

	return nil
}

// GetByID retrieves a POS by its unique identifier.
func (r *PosRepository) GetByID(ctx context.Context, id string) (*domain.Pos, error) {
	query := `SELECT ` + posColumns + ` FROM pos WHERE id = $1`
	return r.scanPos(ctx, query, id)
}

// GetBySlug retrieves a POS by its URL slug.
func (r *PosRepository) GetBySlug(ctx context.Context, slug string) (*domain.Pos, error) {
	query := `SELECT ` + posColumns + ` FROM pos WHERE slug = $1`
	return r.scanPos(ctx, query, slug)
}

func (r *PosRepository) scanPos(ctx context.Context, query, arg string) (*domain.Pos, error) {
	var p domain.Pos
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Type,
		&p.Street,
		&p.HouseNumber,
		&p.PostalCode,
		&p.City,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("pos", arg)
		}
		return nil, fmt.Errorf("get pos: %w", err)
	}

	return &p, nil
}

// Update modifies an existing POS in the database.
func (r *PosRepository) Update(ctx context.Context, pos *domain.Pos) error {
	pos.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE pos
		SET name = $1, slug = $2, description = $3, type = $4, street = $5,
		    house_number = $6, postal_code = $7, city = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.pool.Exec(ctx, query,
		pos.Name,
		pos.Slug,
		pos.Description,
		pos.Type,
		pos.Street,
		pos.HouseNumber,
		pos.PostalCode,
		pos.City,
		pos.UpdatedAt,
		pos.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("pos", "name", pos.Name)
		}
		return fmt.Errorf("update pos: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("pos", pos.ID)
	}

	return nil
}

// List returns paginated POS entries ordered by name, along with the total count.
func (r *PosRepository) List(ctx context.Context, page, perPage int) ([]domain.Pos, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	query := `
		SELECT ` + posColumns + `,
		       count(*) OVER() AS total_count
		FROM pos
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list pos: %w", err)
	}
	defer rows.Close()

	var (
		entries    []domain.Pos
		totalCount int
	)

	for rows.Next() {
		var p domain.Pos
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Type,
			&p.Street,
			&p.HouseNumber,
			&p.PostalCode,
			&p.City,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan pos row: %w", err)
		}
		entries = append(entries, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate pos rows: %w", err)
	}

	if entries == nil {
		entries = []domain.Pos{}
	}

	return entries, totalCount, nil
}
