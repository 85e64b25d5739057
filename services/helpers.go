package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/repositories"
	"github.com/ZAKARYA123J/teamhub/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// populatePhotoURL fills PhotoURL from PhotoKey when storage is configured.
func populatePhotoURL(uploader storage.FileUploader, player *models.Player) {
	if player == nil || uploader == nil || player.PhotoKey == nil || *player.PhotoKey == "" {
		return
	}
	if u := uploader.GetPublicURL(*player.PhotoKey); u != "" {
		player.PhotoURL = &u
	}
}

func populatePhotoURLs(uploader storage.FileUploader, players []*models.Player) {
	for _, p := range players {
		populatePhotoURL(uploader, p)
	}
}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисов.
func handleRepositoryError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrCoachNotFound), errors.Is(err, repositories.ErrGroupCoachInvalid):
		return ErrCoachNotFound
	case errors.Is(err, repositories.ErrPlayerGroupInvalid):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrGroupAgeBoundsInvalid):
		return fmt.Errorf("%w: min_age must be between 0 and max_age", ErrValidationFailed)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

func validateAgeBounds(minAge, maxAge int) error {
	if minAge < 0 || maxAge < 0 {
		return fmt.Errorf("%w: ages must not be negative", ErrValidationFailed)
	}
	if minAge > maxAge {
		return fmt.Errorf("%w: min_age must not exceed max_age", ErrValidationFailed)
	}
	return nil
}
