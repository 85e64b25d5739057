package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ZAKARYA123J/teamhub/models"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountEmailConflict   = errors.New("account email conflict")
	ErrAccountProfileConflict = errors.New("account already has a profile")
	ErrAccountRoleInvalid     = errors.New("account role invalid")
	ErrCoachNotFound          = errors.New("coach profile not found")
	ErrCoachHasGroups         = errors.New("coach still supervises groups")
)

type AccountFilter struct {
	Role *models.Role
}

// AccountRepository stores accounts together with their role profile rows.
// Records are returned in storage shape; callers resolve them.
type AccountRepository interface {
	CreateWithProfile(ctx context.Context, rec *models.AccountRecord) error
	GetByID(ctx context.Context, id int) (*models.AccountRecord, error)
	GetByEmail(ctx context.Context, email string) (*models.AccountRecord, error)
	List(ctx context.Context, filter AccountFilter) ([]*models.AccountRecord, error)
	Update(ctx context.Context, rec *models.AccountRecord) error
	Delete(ctx context.Context, id int) error
	GetCoachProfile(ctx context.Context, coachID int) (*models.CoachProfile, error)
}

type postgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) AccountRepository {
	return &postgresAccountRepository{db: db}
}

const selectAccountRecord = `
	SELECT
		a.id, a.email, a.password_hash, a.role, a.created_at, a.updated_at,
		c.id, c.name, c.specialization, c.experience, c.availability, c.contact_info,
		s.id, s.name, s.availability, s.nationality, s.age, s.contact_info,
		ad.id, ad.name
	FROM
		accounts a
	LEFT JOIN coach_profiles c ON c.account_id = a.id
	LEFT JOIN staff_profiles s ON s.account_id = a.id
	LEFT JOIN admin_profiles ad ON ad.account_id = a.id`

func (r *postgresAccountRepository) CreateWithProfile(ctx context.Context, rec *models.AccountRecord) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO accounts (email, password_hash, role)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowContext(ctx, query, rec.Email, rec.PasswordHash, rec.Role).
			Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return r.handleAccountError(err)
		}

		return r.insertProfile(ctx, tx, rec)
	})
}

func (r *postgresAccountRepository) insertProfile(ctx context.Context, exec SQLExecutor, rec *models.AccountRecord) error {
	var err error
	switch {
	case rec.Coach != nil:
		rec.Coach.AccountID = rec.ID
		err = exec.QueryRowContext(ctx, `
			INSERT INTO coach_profiles (account_id, name, specialization, experience, availability, contact_info)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			rec.ID, rec.Coach.Name, rec.Coach.Specialization, rec.Coach.Experience,
			nullBool(rec.Coach.Availability), rec.Coach.ContactInfo,
		).Scan(&rec.Coach.ID)
	case rec.Staff != nil:
		rec.Staff.AccountID = rec.ID
		err = exec.QueryRowContext(ctx, `
			INSERT INTO staff_profiles (account_id, name, availability, nationality, age, contact_info)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			rec.ID, rec.Staff.Name, nullBool(rec.Staff.Availability), rec.Staff.Nationality,
			nullInt(rec.Staff.Age), rec.Staff.ContactInfo,
		).Scan(&rec.Staff.ID)
	case rec.Admin != nil:
		rec.Admin.AccountID = rec.ID
		err = exec.QueryRowContext(ctx, `
			INSERT INTO admin_profiles (account_id, name)
			VALUES ($1, $2)
			RETURNING id`,
			rec.ID, rec.Admin.Name,
		).Scan(&rec.Admin.ID)
	}
	if err != nil {
		return r.handleAccountError(err)
	}
	return nil
}

func (r *postgresAccountRepository) GetByID(ctx context.Context, id int) (*models.AccountRecord, error) {
	return r.getOne(ctx, selectAccountRecord+` WHERE a.id = $1`, id)
}

func (r *postgresAccountRepository) GetByEmail(ctx context.Context, email string) (*models.AccountRecord, error) {
	return r.getOne(ctx, selectAccountRecord+` WHERE a.email = $1`, email)
}

func (r *postgresAccountRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.AccountRecord, error) {
	rec, err := scanAccountRecord(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return rec, nil
}

func (r *postgresAccountRepository) List(ctx context.Context, filter AccountFilter) ([]*models.AccountRecord, error) {
	query := selectAccountRecord
	args := []interface{}{}
	if filter.Role != nil {
		query += ` WHERE a.role = $1`
		args = append(args, *filter.Role)
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	records := make([]*models.AccountRecord, 0)
	for rows.Next() {
		rec, scanErr := scanAccountRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", scanErr)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Update writes the account columns and the row of its single profile in one
// transaction. The role itself is never changed.
func (r *postgresAccountRepository) Update(ctx context.Context, rec *models.AccountRecord) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE accounts SET
				email = $1,
				password_hash = $2,
				updated_at = NOW()
			WHERE id = $3
			RETURNING updated_at`,
			rec.Email, rec.PasswordHash, rec.ID,
		).Scan(&rec.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return r.handleAccountError(err)
		}

		var result sql.Result
		switch {
		case rec.Coach != nil:
			result, err = tx.ExecContext(ctx, `
				UPDATE coach_profiles SET
					name = $1, specialization = $2, experience = $3, availability = $4, contact_info = $5
				WHERE account_id = $6`,
				rec.Coach.Name, rec.Coach.Specialization, rec.Coach.Experience,
				nullBool(rec.Coach.Availability), rec.Coach.ContactInfo, rec.ID)
		case rec.Staff != nil:
			result, err = tx.ExecContext(ctx, `
				UPDATE staff_profiles SET
					name = $1, availability = $2, nationality = $3, age = $4, contact_info = $5
				WHERE account_id = $6`,
				rec.Staff.Name, nullBool(rec.Staff.Availability), rec.Staff.Nationality,
				nullInt(rec.Staff.Age), rec.Staff.ContactInfo, rec.ID)
		case rec.Admin != nil:
			result, err = tx.ExecContext(ctx, `UPDATE admin_profiles SET name = $1 WHERE account_id = $2`,
				rec.Admin.Name, rec.ID)
		default:
			return nil
		}
		if err != nil {
			return r.handleAccountError(err)
		}
		return checkAffectedRows(result, ErrAccountNotFound)
	})
}

// Delete removes the account; its profile row goes with it (ON DELETE CASCADE).
func (r *postgresAccountRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return r.handleAccountError(err)
	}
	return checkAffectedRows(result, ErrAccountNotFound)
}

func (r *postgresAccountRepository) GetCoachProfile(ctx context.Context, coachID int) (*models.CoachProfile, error) {
	query := `
		SELECT id, account_id, name, specialization, experience, availability, contact_info
		FROM coach_profiles
		WHERE id = $1`

	coach := &models.CoachProfile{}
	var availability sql.NullBool
	err := r.db.QueryRowContext(ctx, query, coachID).Scan(
		&coach.ID,
		&coach.AccountID,
		&coach.Name,
		&coach.Specialization,
		&coach.Experience,
		&availability,
		&coach.ContactInfo,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to scan coach profile: %w", err)
	}
	coach.Availability = boolFromNull(availability)
	return coach, nil
}

func (r *postgresAccountRepository) handleAccountError(err error) error {
	if constraint, ok := pqConstraint(err, pqUniqueViolation); ok {
		switch constraint {
		case "accounts_email_key":
			return ErrAccountEmailConflict
		case "coach_profiles_account_id_key", "staff_profiles_account_id_key", "admin_profiles_account_id_key":
			return ErrAccountProfileConflict
		}
	}
	if constraint, ok := pqConstraint(err, pqCheckViolation); ok && constraint == "accounts_role_check" {
		return ErrAccountRoleInvalid
	}
	if constraint, ok := pqConstraint(err, pqForeignKeyViolation); ok && constraint == "groups_coach_id_fkey" {
		return ErrCoachHasGroups
	}
	return err
}

func scanAccountRecord(row rowScanner) (*models.AccountRecord, error) {
	rec := &models.AccountRecord{}

	var (
		coachID             sql.NullInt64
		coachName           sql.NullString
		coachSpecialization sql.NullString
		coachExperience     sql.NullString
		coachAvailability   sql.NullBool
		coachContact        sql.NullString

		staffID           sql.NullInt64
		staffName         sql.NullString
		staffAvailability sql.NullBool
		staffNationality  sql.NullString
		staffAge          sql.NullInt64
		staffContact      sql.NullString

		adminID   sql.NullInt64
		adminName sql.NullString
	)

	err := row.Scan(
		&rec.ID, &rec.Email, &rec.PasswordHash, &rec.Role, &rec.CreatedAt, &rec.UpdatedAt,
		&coachID, &coachName, &coachSpecialization, &coachExperience, &coachAvailability, &coachContact,
		&staffID, &staffName, &staffAvailability, &staffNationality, &staffAge, &staffContact,
		&adminID, &adminName,
	)
	if err != nil {
		return nil, err
	}

	if coachID.Valid {
		rec.Coach = &models.CoachProfile{
			ID:             int(coachID.Int64),
			AccountID:      rec.ID,
			Name:           coachName.String,
			Specialization: coachSpecialization.String,
			Experience:     coachExperience.String,
			Availability:   boolFromNull(coachAvailability),
			ContactInfo:    coachContact.String,
		}
	}
	if staffID.Valid {
		rec.Staff = &models.StaffProfile{
			ID:           int(staffID.Int64),
			AccountID:    rec.ID,
			Name:         staffName.String,
			Availability: boolFromNull(staffAvailability),
			Nationality:  staffNationality.String,
			Age:          intFromNull(staffAge),
			ContactInfo:  staffContact.String,
		}
	}
	if adminID.Valid {
		rec.Admin = &models.AdminProfile{
			ID:        int(adminID.Int64),
			AccountID: rec.ID,
			Name:      adminName.String,
		}
	}

	return rec, nil
}
