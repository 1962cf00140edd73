package repository

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/templui/betterme/internal/model"
)

const (
	GoalOrderCreatedDesc = "created_desc"
	GoalOrderCreatedAsc  = "created_asc"
	GoalOrderCompleted   = "completed"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

// psql builds dynamic queries with $N placeholders for both drivers
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// GoalFilter narrows Goals. Zero values mean "any".
type GoalFilter struct {
	Season   string
	Statuses []string
	Order    string
}

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(userID, goalID string) (*model.Goal, error)
	Goals(userID string, filter GoalFilter) ([]*model.Goal, error)
	Seasons(userID string) ([]string, error)
	Update(goal *model.Goal) error
	Delete(userID, goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, title, description, season, status, created_at, updated_at, completed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Season,
		goal.Status,
		goal.CreatedAt,
		goal.UpdatedAt,
		goal.CompletedAt,
	)

	return err
}

func (r *goalRepository) ByID(userID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2`

	err := r.db.Get(goal, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}

	return goal, err
}

func (r *goalRepository) Goals(userID string, filter GoalFilter) ([]*model.Goal, error) {
	goals := []*model.Goal{}

	q := psql.Select("*").From("goals").Where(sq.Eq{"user_id": userID})

	if filter.Season != "" {
		q = q.Where(sq.Eq{"season": filter.Season})
	}

	if len(filter.Statuses) > 0 {
		q = q.Where(sq.Eq{"status": filter.Statuses})
	}

	switch filter.Order {
	case GoalOrderCreatedAsc:
		q = q.OrderBy("created_at ASC")
	case GoalOrderCompleted:
		q = q.OrderBy("completed_at ASC", "created_at ASC")
	default:
		q = q.OrderBy("created_at DESC")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build goals query: %w", err)
	}

	err = r.db.Select(&goals, query, args...)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) Seasons(userID string) ([]string, error) {
	seasons := []string{}
	query := `SELECT DISTINCT season FROM goals WHERE user_id = $1 ORDER BY season`

	err := r.db.Select(&seasons, query, userID)
	if err != nil {
		return nil, err
	}

	return seasons, nil
}

// Update writes the mutable columns. The owner is part of the WHERE clause so
// a goal belonging to someone else reads as not found.
func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, description = $2, status = $3, updated_at = $4, completed_at = $5
	          WHERE id = $6 AND user_id = $7`

	result, err := r.db.Exec(query,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.UpdatedAt,
		goal.CompletedAt,
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

func (r *goalRepository) Delete(userID, goalID string) error {
	query := `DELETE FROM goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, goalID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
