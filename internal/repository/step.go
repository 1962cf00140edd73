package repository

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/templui/betterme/internal/model"
)

var (
	ErrStepNotFound = errors.New("step not found")
)

type StepRepository interface {
	Create(userID string, step *model.Step, order *int) error
	ByID(stepID string) (*model.Step, error)
	Steps(goalID string) ([]*model.Step, error)
	StepsByGoalIDs(goalIDs []string) (map[string][]*model.Step, error)
	Update(userID string, step *model.Step) error
	Delete(userID, stepID string) error
}

type stepRepository struct {
	db *sqlx.DB
}

func NewStepRepository(db *sqlx.DB) StepRepository {
	return &stepRepository{db: db}
}

// Create inserts step under a goal owned by userID. When order is nil the
// step is appended after the highest existing order (0 for the first step).
// The ownership check, order lookup and insert share one transaction.
func (r *stepRepository) Create(userID string, step *model.Step, order *int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owned int
	err = tx.Get(&owned, `SELECT COUNT(*) FROM goals WHERE id = $1 AND user_id = $2`, step.GoalID, userID)
	if err != nil {
		return err
	}
	if owned == 0 {
		return ErrGoalNotFound
	}

	if order != nil {
		step.Order = *order
	} else {
		var maxOrder sql.NullInt64
		err = tx.Get(&maxOrder, `SELECT MAX(sort_order) FROM steps WHERE goal_id = $1`, step.GoalID)
		if err != nil {
			return fmt.Errorf("failed to read step order: %w", err)
		}
		step.Order = 0
		if maxOrder.Valid {
			step.Order = int(maxOrder.Int64) + 1
		}
	}

	query := `INSERT INTO steps (id, goal_id, title, is_completed, sort_order, created_at, updated_at, completed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(query,
		step.ID,
		step.GoalID,
		step.Title,
		step.IsCompleted,
		step.Order,
		step.CreatedAt,
		step.UpdatedAt,
		step.CompletedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *stepRepository) ByID(stepID string) (*model.Step, error) {
	step := &model.Step{}
	query := `SELECT * FROM steps WHERE id = $1`

	err := r.db.Get(step, query, stepID)
	if err == sql.ErrNoRows {
		return nil, ErrStepNotFound
	}

	return step, err
}

func (r *stepRepository) Steps(goalID string) ([]*model.Step, error) {
	steps := []*model.Step{}
	query := `SELECT * FROM steps WHERE goal_id = $1 ORDER BY sort_order ASC, created_at ASC`

	err := r.db.Select(&steps, query, goalID)
	if err != nil {
		return nil, err
	}

	return steps, nil
}

// StepsByGoalIDs loads the steps of several goals in one query. Every
// requested id is present in the result, possibly with an empty slice.
func (r *stepRepository) StepsByGoalIDs(goalIDs []string) (map[string][]*model.Step, error) {
	result := make(map[string][]*model.Step, len(goalIDs))
	if len(goalIDs) == 0 {
		return result, nil
	}

	for _, id := range goalIDs {
		result[id] = []*model.Step{}
	}

	query, args, err := psql.Select("*").
		From("steps").
		Where(sq.Eq{"goal_id": goalIDs}).
		OrderBy("sort_order ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build steps query: %w", err)
	}

	var steps []*model.Step
	err = r.db.Select(&steps, query, args...)
	if err != nil {
		return nil, err
	}

	for _, step := range steps {
		result[step.GoalID] = append(result[step.GoalID], step)
	}

	return result, nil
}

func (r *stepRepository) Update(userID string, step *model.Step) error {
	query := `UPDATE steps
	          SET title = $1, is_completed = $2, sort_order = $3, updated_at = $4, completed_at = $5
	          WHERE id = $6 AND goal_id IN (SELECT id FROM goals WHERE user_id = $7)`

	result, err := r.db.Exec(query,
		step.Title,
		step.IsCompleted,
		step.Order,
		step.UpdatedAt,
		step.CompletedAt,
		step.ID,
		userID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrStepNotFound
	}

	return nil
}

func (r *stepRepository) Delete(userID, stepID string) error {
	query := `DELETE FROM steps WHERE id = $1 AND goal_id IN (SELECT id FROM goals WHERE user_id = $2)`

	result, err := r.db.Exec(query, stepID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrStepNotFound
	}

	return nil
}
