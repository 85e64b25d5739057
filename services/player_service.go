package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/repositories"
	"github.com/ZAKARYA123J/teamhub/storage"
	"github.com/google/uuid"
)

const playerPhotoPrefix = "players"

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
	UploadPhoto(ctx context.Context, id int, contentType string, file io.Reader) (*models.Player, error)
}

type PlayerInput struct {
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
	Age         int    `json:"age"`
	ContactInfo string `json:"contact_info"`
	Position    string `json:"position"`
	GroupID     *int   `json:"group_id"`
}

type UpdatePlayerInput struct {
	Name        *string `json:"name"`
	Nationality *string `json:"nationality"`
	Age         *int    `json:"age"`
	ContactInfo *string `json:"contact_info"`
	Position    *string `json:"position"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	groupRepo  repositories.GroupRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

// NewPlayerService accepts a nil uploader; photo upload then reports
// ErrUploaderUnavailable.
func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	groupRepo repositories.GroupRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{
		playerRepo: playerRepo,
		groupRepo:  groupRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

func (in PlayerInput) toPlayer() (*models.Player, error) {
	player := &models.Player{
		Name:        strings.TrimSpace(in.Name),
		Nationality: strings.TrimSpace(in.Nationality),
		Age:         in.Age,
		ContactInfo: strings.TrimSpace(in.ContactInfo),
		Position:    strings.TrimSpace(in.Position),
		GroupID:     in.GroupID,
	}
	if err := validatePlayer(player); err != nil {
		return nil, err
	}
	return player, nil
}

func validatePlayer(p *models.Player) error {
	if p.Name == "" {
		return fmt.Errorf("%w: player name is required", ErrValidationFailed)
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: player age must not be negative", ErrValidationFailed)
	}
	return nil
}

func (s *playerService) CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error) {
	player, err := input.toPlayer()
	if err != nil {
		return nil, err
	}

	if player.GroupID != nil {
		group, err := s.groupRepo.GetByID(ctx, *player.GroupID)
		if err != nil {
			return nil, handleRepositoryError(err, "load group")
		}
		if !group.AcceptsAge(player.Age) {
			return nil, ErrPlayerAgeOutOfRange
		}
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, handleRepositoryError(err, "create player")
	}
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get player")
	}
	populatePhotoURL(s.uploader, player)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	populatePhotoURLs(s.uploader, players)
	return players, nil
}

// UpdatePlayer changes the player's own fields; group membership is managed
// through the group endpoints.
func (s *playerService) UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get player")
	}

	if input.Name != nil {
		player.Name = derefString(input.Name)
	}
	if input.Nationality != nil {
		player.Nationality = derefString(input.Nationality)
	}
	if input.Age != nil {
		player.Age = *input.Age
	}
	if input.ContactInfo != nil {
		player.ContactInfo = derefString(input.ContactInfo)
	}
	if input.Position != nil {
		player.Position = derefString(input.Position)
	}
	if err := validatePlayer(player); err != nil {
		return nil, err
	}

	if input.Age != nil && player.GroupID != nil {
		group, err := s.groupRepo.GetByID(ctx, *player.GroupID)
		if err != nil {
			return nil, handleRepositoryError(err, "load group")
		}
		if !group.AcceptsAge(player.Age) {
			return nil, ErrPlayerAgeOutOfRange
		}
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, handleRepositoryError(err, "update player")
	}
	populatePhotoURL(s.uploader, player)
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err, "get player")
	}
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err, "delete player")
	}
	if player.PhotoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *player.PhotoKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete player photo", slog.Int("player_id", id), slog.Any("error", err))
		}
	}
	return nil
}

// UploadPhoto stores the image under a fresh key and replaces the previous
// photo, which is removed from storage afterwards.
func (s *playerService) UploadPhoto(ctx context.Context, id int, contentType string, file io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrUploaderUnavailable
	}
	ext, ok := allowedPhotoTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, ErrUnsupportedPhotoType
	}

	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get player")
	}

	key := fmt.Sprintf("%s/%d/%s%s", playerPhotoPrefix, id, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload player photo: %w", err)
	}

	previous := player.PhotoKey
	if err := s.playerRepo.UpdatePhotoKey(ctx, id, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to clean up orphaned photo", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, handleRepositoryError(err, "save player photo")
	}
	player.PhotoKey = &key

	if previous != nil && *previous != "" {
		if err := s.uploader.Delete(ctx, *previous); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous player photo", slog.String("key", *previous), slog.Any("error", err))
		}
	}

	populatePhotoURL(s.uploader, player)
	return player, nil
}
