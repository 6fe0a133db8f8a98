package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/godilite/feedback-server/internal/repository/models"
)

// execQuerier is satisfied by both *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateServicePoint(ctx context.Context, sp models.ServicePoint) (int64, error) {
	if strings.TrimSpace(sp.Name) == "" {
		return 0, fmt.Errorf("create service point: name is required")
	}
	const insert = `INSERT INTO service_points (company_id, name, department, is_active) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, insert, sp.CompanyID, sp.Name, sp.Department, sp.IsActive)
	if err != nil {
		return 0, fmt.Errorf("insert service point: %w", err)
	}
	return res.LastInsertId()
}

// UpsertCriteriaBulk inserts or updates every criterion by title in one transaction
// and returns their ids in input order. Titles match case-insensitively.
func (r *CatalogRepository) UpsertCriteriaBulk(ctx context.Context, criteria []models.Criterion) (ids []int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin criteria tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsert = `
		INSERT INTO rating_criteria (title, is_required, display_order) VALUES (?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET is_required = excluded.is_required, display_order = excluded.display_order
	`
	ids = make([]int64, 0, len(criteria))
	for _, c := range criteria {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			err = fmt.Errorf("upsert criteria: empty title")
			return nil, err
		}
		if _, err = tx.ExecContext(ctx, upsert, title, c.IsRequired, c.DisplayOrder); err != nil {
			err = fmt.Errorf("upsert criterion %q: %w", title, err)
			return nil, err
		}
		var id int64
		if id, err = criterionID(ctx, tx, title); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit criteria tx: %w", err)
	}
	return ids, nil
}

// LinkServicePointCriteria attaches criteria to a service point. Existing links are kept.
func (r *CatalogRepository) LinkServicePointCriteria(ctx context.Context, servicePointID int64, criteriaIDs []int64) error {
	const insert = `INSERT OR IGNORE INTO service_point_criteria (service_point_id, rating_criteria_id) VALUES (?, ?)`
	for _, id := range criteriaIDs {
		if _, err := r.db.ExecContext(ctx, insert, servicePointID, id); err != nil {
			return fmt.Errorf("link criterion %d to service point %d: %w", id, servicePointID, err)
		}
	}
	return nil
}

// ListServicePoints returns the company's service points with their criteria ordered
// by display order.
func (r *CatalogRepository) ListServicePoints(ctx context.Context, companyID string) ([]models.ServicePoint, error) {
	const query = `
		SELECT sp.id, sp.company_id, sp.name, sp.department, sp.is_active,
		       rc.id, rc.title, rc.is_required, rc.display_order
		FROM service_points AS sp
		LEFT JOIN service_point_criteria AS spc ON spc.service_point_id = sp.id
		LEFT JOIN rating_criteria AS rc ON rc.id = spc.rating_criteria_id
		WHERE sp.company_id = ?
		ORDER BY sp.id ASC, rc.display_order ASC, rc.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("query ListServicePoints: %w", err)
	}
	defer rows.Close()

	var results []models.ServicePoint
	index := make(map[int64]int)
	for rows.Next() {
		var sp models.ServicePoint
		var cID, cOrder sql.NullInt64
		var cTitle sql.NullString
		var cRequired sql.NullBool
		if err := rows.Scan(&sp.ID, &sp.CompanyID, &sp.Name, &sp.Department, &sp.IsActive,
			&cID, &cTitle, &cRequired, &cOrder); err != nil {
			return nil, fmt.Errorf("scan ListServicePoints row: %w", err)
		}

		pos, ok := index[sp.ID]
		if !ok {
			pos = len(results)
			index[sp.ID] = pos
			results = append(results, sp)
		}
		if cID.Valid {
			results[pos].Criteria = append(results[pos].Criteria, models.Criterion{
				ID:           cID.Int64,
				Title:        cTitle.String,
				IsRequired:   cRequired.Bool,
				DisplayOrder: int(cOrder.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListServicePoints: %w", err)
	}
	return results, nil
}

func (r *CatalogRepository) GetServicePoint(ctx context.Context, companyID string, id int64) (models.ServicePoint, error) {
	all, err := r.ListServicePoints(ctx, companyID)
	if err != nil {
		return models.ServicePoint{}, err
	}
	for _, sp := range all {
		if sp.ID == id {
			return sp, nil
		}
	}
	return models.ServicePoint{}, fmt.Errorf("service point %d: %w", id, ErrNotFound)
}

// upsertCriterion returns the id of the criterion titled title, creating it when absent.
func upsertCriterion(ctx context.Context, q execQuerier, title string, required bool) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, fmt.Errorf("resolve criterion: empty title")
	}
	const insert = `INSERT INTO rating_criteria (title, is_required) VALUES (?, ?) ON CONFLICT(title) DO NOTHING`
	if _, err := q.ExecContext(ctx, insert, title, required); err != nil {
		return 0, fmt.Errorf("insert criterion %q: %w", title, err)
	}
	return criterionID(ctx, q, title)
}

func criterionID(ctx context.Context, q execQuerier, title string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM rating_criteria WHERE title = ?`, title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("criterion %q: %w", title, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("select criterion %q: %w", title, err)
	}
	return id, nil
}
