package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ZAKARYA123J/teamhub/identity"
	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/repositories"
	"github.com/ZAKARYA123J/teamhub/utils"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Me(ctx context.Context, accountID int) (*models.Account, error)
}

// RegisterInput is the public registration payload. Which profile fields are
// required depends on Role.
type RegisterInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Experience     string `json:"experience"`
	Availability   *bool  `json:"availability"`
	Nationality    string `json:"nationality"`
	Age            *int   `json:"age"`
	ContactInfo    string `json:"contact_info"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Account *models.Account
	Token   string
}

type authService struct {
	accountRepo   repositories.AccountRepository
	tokens        *TokenIssuer
	checkPassword func(password, hash string) bool
	logger        *slog.Logger
}

// dummyPasswordHash is compared against when the email is unknown, so both
// login failures cost one bcrypt compare.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := utils.HashPassword("teamhub-placeholder-password")
	if err != nil {
		panic(err)
	}
	return hash
})

func NewAuthService(accountRepo repositories.AccountRepository, tokens *TokenIssuer, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		accountRepo:   accountRepo,
		tokens:        tokens,
		checkPassword: utils.CheckPasswordHash,
		logger:        logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < utils.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := models.RoleUser
	if strings.TrimSpace(input.Role) != "" {
		parsed, err := models.ParseRole(input.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", identity.ErrInvalidRoleFields, err)
		}
		role = parsed
	}

	// Профиль валидируется до хеширования и записи в БД.
	profile, err := identity.BuildProfileForRegistration(role, identity.RegistrationFields{
		Name:           input.Name,
		Specialization: input.Specialization,
		Experience:     input.Experience,
		Availability:   input.Availability,
		Nationality:    input.Nationality,
		Age:            input.Age,
		ContactInfo:    input.ContactInfo,
	})
	if err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	rec := identity.ToRecord(&models.Account{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Profile:      profile,
	})
	if err := s.accountRepo.CreateWithProfile(ctx, rec); err != nil {
		if errors.Is(err, repositories.ErrAccountEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("ошибка создания аккаунта: %w", err)
	}

	account, err := identity.Resolve(rec, s.logger)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered", slog.Int("account_id", account.ID), slog.String("role", role.String()))
	return &AuthResult{Account: account, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	rec, err := s.accountRepo.GetByEmail(ctx, utils.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			s.checkPassword(input.Password, dummyPasswordHash())
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}

	if !s.checkPassword(input.Password, rec.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	account, err := identity.Resolve(rec, s.logger)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, Token: token}, nil
}

func (s *authService) Me(ctx context.Context, accountID int) (*models.Account, error) {
	rec, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return identity.Resolve(rec, s.logger)
}
