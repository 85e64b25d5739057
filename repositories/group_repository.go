package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ZAKARYA123J/teamhub/models"
)

var (
	ErrGroupNotFound         = errors.New("group not found")
	ErrGroupCoachInvalid     = errors.New("group coach conflict or invalid")
	ErrGroupAgeBoundsInvalid = errors.New("group age bounds invalid")
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)
	ListByCoach(ctx context.Context, coachID int) ([]*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int) error
	CountByCoach(ctx context.Context) (map[int]int, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

const selectGroup = `
	SELECT
		g.id, g.name, g.coach_id, g.min_age, g.max_age, g.created_at, g.updated_at,
		c.id, c.account_id, c.name, c.specialization, c.experience, c.availability, c.contact_info
	FROM
		groups g
	LEFT JOIN coach_profiles c ON c.id = g.coach_id`

// Create inserts the group and, in the same transaction, any players listed
// in group.Players (they join the new group).
func (r *postgresGroupRepository) Create(ctx context.Context, group *models.Group) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO groups (name, coach_id, min_age, max_age)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowContext(ctx, query, group.Name, group.CoachID, group.MinAge, group.MaxAge).
			Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			return r.handleGroupError(err)
		}

		for i := range group.Players {
			player := &group.Players[i]
			groupID := group.ID
			player.GroupID = &groupID
			if err := insertPlayer(ctx, tx, player); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	group, err := scanGroup(r.db.QueryRowContext(ctx, selectGroup+` WHERE g.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}
	return group, nil
}

func (r *postgresGroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	return r.list(ctx, selectGroup+` ORDER BY g.name ASC, g.id ASC`)
}

func (r *postgresGroupRepository) ListByCoach(ctx context.Context, coachID int) ([]*models.Group, error) {
	return r.list(ctx, selectGroup+` WHERE g.coach_id = $1 ORDER BY g.name ASC, g.id ASC`, coachID)
}

func (r *postgresGroupRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		group, scanErr := scanGroup(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", scanErr)
		}
		groups = append(groups, group)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *postgresGroupRepository) Update(ctx context.Context, group *models.Group) error {
	query := `
		UPDATE groups SET
			name = $1,
			coach_id = $2,
			min_age = $3,
			max_age = $4,
			updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, group.Name, group.CoachID, group.MinAge, group.MaxAge, group.ID).
		Scan(&group.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrGroupNotFound
	}
	return r.handleGroupError(err)
}

// Delete removes the group; its players stay, with group_id set to NULL.
func (r *postgresGroupRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return r.handleGroupError(err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

// CountByCoach maps coach profile id to the number of groups it supervises.
func (r *postgresGroupRepository) CountByCoach(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT coach_id, COUNT(*) FROM groups GROUP BY coach_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var coachID, count int
		if err := rows.Scan(&coachID, &count); err != nil {
			return nil, err
		}
		counts[coachID] = count
	}
	return counts, rows.Err()
}

func (r *postgresGroupRepository) handleGroupError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := pqConstraint(err, pqForeignKeyViolation); ok && constraint == "groups_coach_id_fkey" {
		return ErrGroupCoachInvalid
	}
	if constraint, ok := pqConstraint(err, pqCheckViolation); ok && constraint == "groups_age_bounds_check" {
		return ErrGroupAgeBoundsInvalid
	}
	return err
}

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}

	var (
		coachID             sql.NullInt64
		coachAccountID      sql.NullInt64
		coachName           sql.NullString
		coachSpecialization sql.NullString
		coachExperience     sql.NullString
		coachAvailability   sql.NullBool
		coachContact        sql.NullString
	)

	err := row.Scan(
		&group.ID, &group.Name, &group.CoachID, &group.MinAge, &group.MaxAge, &group.CreatedAt, &group.UpdatedAt,
		&coachID, &coachAccountID, &coachName, &coachSpecialization, &coachExperience, &coachAvailability, &coachContact,
	)
	if err != nil {
		return nil, err
	}

	if coachID.Valid {
		group.Coach = &models.CoachProfile{
			ID:             int(coachID.Int64),
			AccountID:      int(coachAccountID.Int64),
			Name:           coachName.String,
			Specialization: coachSpecialization.String,
			Experience:     coachExperience.String,
			Availability:   boolFromNull(coachAvailability),
			ContactInfo:    coachContact.String,
		}
	}

	return group, nil
}
