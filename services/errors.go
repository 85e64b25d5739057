package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidEmail         = errors.New("email address is invalid")
	ErrRoleChangeNotAllowed = errors.New("account role cannot be changed")
	ErrPlayerAgeOutOfRange  = errors.New("player age is outside the group age range")
	ErrUnsupportedPhotoType = errors.New("photo must be a jpeg, png or webp image")

	// Ошибки конфликтов
	ErrEmailConflict  = errors.New("email address is already in use")
	ErrCoachHasGroups = errors.New("coach still supervises groups")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrAccountNotFound  = errors.New("account not found")
	ErrCoachNotFound    = errors.New("coach not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerNotInGroup = errors.New("player is not a member of this group")

	// Внешние зависимости
	ErrUploaderUnavailable = errors.New("photo storage is not configured")
)
