package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/feedback-server/internal/repository/models"
)

var ErrNotFound = errors.New("record not found")

// timeLayout is fixed width so created_at TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type RatingRepository struct {
	db  *sql.DB
	now func() time.Time
}

type Option func(*RatingRepository)

// WithClock overrides the timestamp source used for created_at columns.
func WithClock(now func() time.Time) Option {
	return func(r *RatingRepository) { r.now = now }
}

func NewRatingRepository(db *sql.DB, opts ...Option) *RatingRepository {
	r := &RatingRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RatingRepository) timestamp() string {
	return r.now().UTC().Format(timeLayout)
}

// UpsertUser inserts the identity row keyed by its submission key. Re-sending the
// same key returns the row created the first time.
func (r *RatingRepository) UpsertUser(ctx context.Context, u models.User) (models.User, error) {
	if u.SubmissionKey == "" {
		return models.User{}, fmt.Errorf("upsert user: submission key is required")
	}

	const insert = `
		INSERT INTO users (submission_key, name, phone, email, company_id, branch_id, user_path, sms_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(submission_key) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert,
		u.SubmissionKey, u.Name, u.Phone, u.Email, u.CompanyID, u.BranchID, u.UserPath, u.SMSStatus, r.timestamp(),
	); err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	const query = `
		SELECT id, submission_key, name, phone, email, company_id, branch_id, user_path, sms_status, created_at
		FROM users WHERE submission_key = ?
	`
	var out models.User
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, u.SubmissionKey).Scan(
		&out.ID, &out.SubmissionKey, &out.Name, &out.Phone, &out.Email,
		&out.CompanyID, &out.BranchID, &out.UserPath, &out.SMSStatus, &createdAt,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	out.CreatedAt = parseTime(createdAt)
	return out, nil
}

// InsertRatingEpisode persists every (criterion, score) pair of one submission in a
// single transaction sharing one created_at. It returns the id of the first row,
// which feedback rows reference. Either all rows are written or none are.
//
// A user row belongs to exactly one submission, so a second call for the same
// user returns the existing episode instead of writing another.
func (r *RatingRepository) InsertRatingEpisode(ctx context.Context, in models.EpisodeInput) (ratingID int64, err error) {
	if len(in.Ratings) == 0 {
		return 0, fmt.Errorf("insert episode: no ratings")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin episode tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing sql.NullInt64
	if err = tx.QueryRowContext(ctx, `SELECT MIN(id) FROM ratings WHERE user_id = ?`, in.UserID).Scan(&existing); err != nil {
		return 0, fmt.Errorf("lookup episode: %w", err)
	}
	if existing.Valid {
		if err = tx.Commit(); err != nil {
			return 0, fmt.Errorf("commit episode tx: %w", err)
		}
		return existing.Int64, nil
	}

	createdAt := r.timestamp()
	const insert = `
		INSERT INTO ratings (company_id, branch_id, service_point, rating_criteria_id, user_id, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, pair := range in.Ratings {
		criterionID := pair.CriterionID
		if criterionID == 0 {
			criterionID, err = upsertCriterion(ctx, tx, pair.Title, true)
			if err != nil {
				return 0, err
			}
		}

		res, execErr := tx.ExecContext(ctx, insert, in.CompanyID, in.BranchID, in.ServicePoint, criterionID, in.UserID, pair.Score, createdAt)
		if execErr != nil {
			err = fmt.Errorf("insert rating %q: %w", pair.Title, execErr)
			return 0, err
		}
		if i == 0 {
			if ratingID, err = res.LastInsertId(); err != nil {
				return 0, fmt.Errorf("rating id: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit episode tx: %w", err)
	}
	return ratingID, nil
}

// InsertFeedback writes the feedback row of a submission. Repeating it for the
// same user returns the first row's id.
func (r *RatingRepository) InsertFeedback(ctx context.Context, f models.Feedback) (int64, error) {
	var comments sql.NullString
	if len(f.Comments) > 0 {
		raw, err := json.Marshal(f.Comments)
		if err != nil {
			return 0, fmt.Errorf("marshal comments: %w", err)
		}
		comments = sql.NullString{String: string(raw), Valid: true}
	}
	suggestion := sql.NullString{String: f.Suggestion, Valid: strings.TrimSpace(f.Suggestion) != ""}

	const insert = `
		INSERT INTO feedback (company_id, branch_id, user_id, rating_id, comments, suggestions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, f.CompanyID, f.BranchID, f.UserID, f.RatingID, comments, suggestion, r.timestamp()); err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	return r.idByUser(ctx, "feedback", f.UserID)
}

// InsertOther writes the other-criterion row of a submission, once per user.
func (r *RatingRepository) InsertOther(ctx context.Context, o models.OtherRating) (int64, error) {
	const insert = `
		INSERT INTO other_ratings (company_id, branch_id, user_id, criteria, ratings, comments, department, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, o.CompanyID, o.BranchID, o.UserID, o.Criteria, o.Score, o.Comments, o.Department, r.timestamp()); err != nil {
		return 0, fmt.Errorf("insert other rating: %w", err)
	}
	return r.idByUser(ctx, "other_ratings", o.UserID)
}

// idByUser reads the id of the single row table holds for userID. table is
// always a package constant.
func (r *RatingRepository) idByUser(ctx context.Context, table string, userID int64) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE user_id = ?", userID).Scan(&id); err != nil {
		return 0, fmt.Errorf("select %s id: %w", table, err)
	}
	return id, nil
}

// ListRatingRows returns per-criterion rows for a company branch, newest first.
func (r *RatingRepository) ListRatingRows(ctx context.Context, companyID, branchID string) ([]models.RatingRow, error) {
	const query = `
		SELECT r.id, r.service_point, r.score, rc.id, rc.title, u.id, u.name, u.phone, r.created_at
		FROM ratings AS r
		JOIN rating_criteria AS rc ON r.rating_criteria_id = rc.id
		JOIN users AS u ON r.user_id = u.id
		WHERE r.company_id = ? AND r.branch_id = ?
		ORDER BY r.created_at DESC, r.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("query ListRatingRows: %w", err)
	}
	defer rows.Close()

	var results []models.RatingRow
	for rows.Next() {
		var row models.RatingRow
		var score sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&row.ID, &row.ServicePoint, &score, &row.CriterionID, &row.CriterionName,
			&row.UserID, &row.UserName, &row.UserPhone, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ListRatingRows row: %w", err)
		}
		if score.Valid {
			v := score.Float64
			row.Score = &v
		}
		row.CreatedAt = parseTime(createdAt)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListRatingRows: %w", err)
	}
	return results, nil
}

func (r *RatingRepository) ListFeedback(ctx context.Context, companyID, branchID string) ([]models.Feedback, error) {
	const query = `
		SELECT f.id, f.company_id, f.branch_id, f.user_id, u.name, u.phone, f.rating_id, f.comments, f.suggestions, f.created_at
		FROM feedback AS f
		JOIN users AS u ON f.user_id = u.id
		WHERE f.company_id = ? AND f.branch_id = ?
		ORDER BY f.created_at DESC, f.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("query ListFeedback: %w", err)
	}
	defer rows.Close()

	var results []models.Feedback
	for rows.Next() {
		var f models.Feedback
		var ratingID sql.NullInt64
		var comments, suggestion sql.NullString
		var createdAt string
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.BranchID, &f.UserID, &f.UserName, &f.UserPhone,
			&ratingID, &comments, &suggestion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ListFeedback row: %w", err)
		}
		if ratingID.Valid {
			id := ratingID.Int64
			f.RatingID = &id
		}
		if comments.Valid && comments.String != "" {
			if err := json.Unmarshal([]byte(comments.String), &f.Comments); err != nil {
				return nil, fmt.Errorf("decode comments of feedback %d: %w", f.ID, err)
			}
		}
		f.Suggestion = suggestion.String
		f.CreatedAt = parseTime(createdAt)
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListFeedback: %w", err)
	}
	return results, nil
}

func (r *RatingRepository) ListOther(ctx context.Context, companyID, branchID string) ([]models.OtherRating, error) {
	const query = `
		SELECT id, company_id, branch_id, user_id, criteria, ratings, comments, department, created_at
		FROM other_ratings
		WHERE company_id = ? AND branch_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("query ListOther: %w", err)
	}
	defer rows.Close()

	var results []models.OtherRating
	for rows.Next() {
		var o models.OtherRating
		var createdAt string
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.BranchID, &o.UserID, &o.Criteria, &o.Score,
			&o.Comments, &o.Department, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ListOther row: %w", err)
		}
		o.CreatedAt = parseTime(createdAt)
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListOther: %w", err)
	}
	return results, nil
}

// ListRaters returns every identity row recorded for a company branch.
func (r *RatingRepository) ListRaters(ctx context.Context, companyID, branchID string) ([]models.Rater, error) {
	const query = `
		SELECT id, name, phone, email, user_path, created_at
		FROM users
		WHERE company_id = ? AND branch_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("query ListRaters: %w", err)
	}
	defer rows.Close()

	var results []models.Rater
	for rows.Next() {
		var u models.Rater
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.UserPath, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ListRaters row: %w", err)
		}
		u.CreatedAt = parseTime(createdAt)
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListRaters: %w", err)
	}
	return results, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
