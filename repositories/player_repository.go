package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ZAKARYA123J/teamhub/models"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerGroupInvalid = errors.New("player group conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	ListByGroup(ctx context.Context, groupID int) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
	SetGroup(ctx context.Context, playerID int, groupID *int) error
	UpdatePhotoKey(ctx context.Context, playerID int, key *string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const selectPlayer = `
	SELECT id, name, nationality, age, contact_info, position, group_id, photo_key, created_at, updated_at
	FROM players`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	return insertPlayer(ctx, r.db, player)
}

func insertPlayer(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (name, nationality, age, contact_info, position, group_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		player.Name,
		player.Nationality,
		player.Age,
		player.ContactInfo,
		player.Position,
		nullInt(player.GroupID),
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)

	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := scanPlayer(r.db.QueryRowContext(ctx, selectPlayer+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	return r.list(ctx, selectPlayer+` ORDER BY name ASC, id ASC`)
}

func (r *postgresPlayerRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.Player, error) {
	return r.list(ctx, selectPlayer+` WHERE group_id = $1 ORDER BY name ASC, id ASC`, groupID)
}

func (r *postgresPlayerRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players SET
			name = $1,
			nationality = $2,
			age = $3,
			contact_info = $4,
			position = $5,
			group_id = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		player.Name,
		player.Nationality,
		player.Age,
		player.ContactInfo,
		player.Position,
		nullInt(player.GroupID),
		player.ID,
	).Scan(&player.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// SetGroup moves the player into groupID, or out of any group when nil.
func (r *postgresPlayerRepository) SetGroup(ctx context.Context, playerID int, groupID *int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE players SET group_id = $1, updated_at = NOW() WHERE id = $2`,
		nullInt(groupID), playerID)
	if err != nil {
		return handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, playerID int, key *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE players SET photo_key = $1, updated_at = NOW() WHERE id = $2`,
		nullString(key), playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := pqConstraint(err, pqForeignKeyViolation); ok && constraint == "players_group_id_fkey" {
		return ErrPlayerGroupInvalid
	}
	return err
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	player := &models.Player{}
	var groupID sql.NullInt64
	var photoKey sql.NullString

	err := row.Scan(
		&player.ID,
		&player.Name,
		&player.Nationality,
		&player.Age,
		&player.ContactInfo,
		&player.Position,
		&groupID,
		&photoKey,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	player.GroupID = intFromNull(groupID)
	player.PhotoKey = stringFromNull(photoKey)
	return player, nil
}
