package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ZAKARYA123J/teamhub/identity"
	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/repositories"
	"github.com/ZAKARYA123J/teamhub/utils"
)

type AdminService interface {
	ListAccounts(ctx context.Context) ([]models.AccountView, error)
	GetAccount(ctx context.Context, id int) (models.AccountView, error)
	UpdateAccount(ctx context.Context, id int, input UpdateAccountInput) (models.AccountView, error)
	DeleteAccount(ctx context.Context, actorID, id int) error
	ListStaff(ctx context.Context) ([]models.AccountView, error)
	ListCoaches(ctx context.Context) ([]models.AccountView, error)
}

// UpdateAccountInput holds optional changes; nil fields stay as they are.
// Role is accepted only when it equals the current role.
type UpdateAccountInput struct {
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	Role           *string `json:"role"`
	Name           *string `json:"name"`
	Specialization *string `json:"specialization"`
	Experience     *string `json:"experience"`
	Availability   *bool   `json:"availability"`
	Nationality    *string `json:"nationality"`
	Age            *int    `json:"age"`
	ContactInfo    *string `json:"contact_info"`
}

type adminService struct {
	accountRepo   repositories.AccountRepository
	groupRepo     repositories.GroupRepository
	notifications *NotificationService
	logger        *slog.Logger
}

func NewAdminService(
	accountRepo repositories.AccountRepository,
	groupRepo repositories.GroupRepository,
	notifications *NotificationService,
	logger *slog.Logger,
) AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminService{
		accountRepo:   accountRepo,
		groupRepo:     groupRepo,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *adminService) ListAccounts(ctx context.Context) ([]models.AccountView, error) {
	return s.listViews(ctx, repositories.AccountFilter{})
}

func (s *adminService) ListStaff(ctx context.Context) ([]models.AccountView, error) {
	role := models.RoleStaff
	return s.listViews(ctx, repositories.AccountFilter{Role: &role})
}

func (s *adminService) ListCoaches(ctx context.Context) ([]models.AccountView, error) {
	role := models.RoleCoach
	views, err := s.listViews(ctx, repositories.AccountFilter{Role: &role})
	if err != nil {
		return nil, err
	}

	counts, err := s.groupRepo.CountByCoach(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count coach groups: %w", err)
	}
	for i := range views {
		count := counts[views[i].ProfileID]
		views[i].GroupCount = &count
	}
	return views, nil
}

// listViews resolves every record; a record with broken profile data is
// skipped and alerted on so one bad row does not hide the rest.
func (s *adminService) listViews(ctx context.Context, filter repositories.AccountFilter) ([]models.AccountView, error) {
	records, err := s.accountRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*models.Account, 0, len(records))
	for _, rec := range records {
		account, err := identity.Resolve(rec, s.logger)
		if err != nil {
			s.logger.ErrorContext(ctx, "skipping account with unresolvable profile",
				slog.Int("account_id", rec.ID),
				slog.Bool("alert", true),
				slog.Any("error", err),
			)
			continue
		}
		accounts = append(accounts, account)
	}
	return identity.FormatCredentialSafeViews(accounts), nil
}

func (s *adminService) load(ctx context.Context, id int) (*models.Account, error) {
	rec, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account %d: %w", id, err)
	}
	return identity.Resolve(rec, s.logger)
}

func (s *adminService) GetAccount(ctx context.Context, id int) (models.AccountView, error) {
	account, err := s.load(ctx, id)
	if err != nil {
		return models.AccountView{}, err
	}
	return identity.FormatCredentialSafeView(account), nil
}

func (s *adminService) UpdateAccount(ctx context.Context, id int, input UpdateAccountInput) (models.AccountView, error) {
	account, err := s.load(ctx, id)
	if err != nil {
		return models.AccountView{}, err
	}

	if input.Role != nil {
		role, err := models.ParseRole(*input.Role)
		if err != nil || role != account.Role {
			return models.AccountView{}, ErrRoleChangeNotAllowed
		}
	}

	if input.Email != nil {
		email := utils.NormalizeEmail(*input.Email)
		if !utils.IsValidEmail(email) {
			return models.AccountView{}, ErrInvalidEmail
		}
		account.Email = email
	}

	if input.Password != nil {
		if len(*input.Password) < utils.MinPasswordLength {
			return models.AccountView{}, ErrPasswordTooShort
		}
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			return models.AccountView{}, fmt.Errorf("ошибка хеширования пароля: %w", err)
		}
		account.PasswordHash = hash
	}

	profile, err := identity.ApplyProfileUpdate(account.Role, account.Profile, identity.ProfileUpdate{
		Name:           input.Name,
		Specialization: input.Specialization,
		Experience:     input.Experience,
		Availability:   input.Availability,
		Nationality:    input.Nationality,
		Age:            input.Age,
		ContactInfo:    input.ContactInfo,
	})
	if err != nil {
		return models.AccountView{}, err
	}
	account.Profile = profile

	rec := identity.ToRecord(account)
	if err := s.accountRepo.Update(ctx, rec); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAccountEmailConflict):
			return models.AccountView{}, ErrEmailConflict
		case errors.Is(err, repositories.ErrAccountNotFound):
			return models.AccountView{}, ErrAccountNotFound
		}
		return models.AccountView{}, fmt.Errorf("failed to update account %d: %w", id, err)
	}
	account.UpdatedAt = rec.UpdatedAt

	view := identity.FormatCredentialSafeView(account)
	s.notifications.NotifyAccount(account.ID, models.NotificationAccountUpdated, "your account was updated by an administrator", view)
	return view, nil
}

func (s *adminService) DeleteAccount(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return fmt.Errorf("%w: administrators cannot delete their own account", ErrForbiddenOperation)
	}

	err := s.accountRepo.Delete(ctx, id)
	switch {
	case err == nil:
		s.notifications.DisconnectAccount(id)
		s.logger.InfoContext(ctx, "account deleted", slog.Int("account_id", id), slog.Int("actor_id", actorID))
		return nil
	case errors.Is(err, repositories.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, repositories.ErrCoachHasGroups):
		return ErrCoachHasGroups
	default:
		return fmt.Errorf("failed to delete account %d: %w", id, err)
	}
}
