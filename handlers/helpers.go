package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ZAKARYA123J/teamhub/identity"
	"github.com/ZAKARYA123J/teamhub/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

const internalErrorMessage = "the server encountered a problem and could not process your request"

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// getIDFromURL reads a positive integer path parameter.
func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}

	return id, nil
}

// responder writes error envelopes and logs what the client does not see.
type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (rs responder) errorResponse(w http.ResponseWriter, r *http.Request, status int, env jsonResponse) {
	if err := writeJSON(w, status, env, nil); err != nil {
		rs.logger.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (rs responder) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.logger.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	rs.errorResponse(w, r, http.StatusInternalServerError, jsonResponse{"error": internalErrorMessage})
}

func (rs responder) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.errorResponse(w, r, http.StatusBadRequest, jsonResponse{"error": err.Error()})
}

func (rs responder) message(w http.ResponseWriter, r *http.Request, status int, message string) {
	rs.errorResponse(w, r, status, jsonResponse{"error": message})
}

func (rs responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, data, nil); err != nil {
		rs.logger.ErrorContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func (rs responder) mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var fieldsErr *identity.RoleFieldsError

	switch {
	// Поля профиля не соответствуют роли
	case errors.As(err, &fieldsErr):
		rs.errorResponse(w, r, http.StatusBadRequest, jsonResponse{
			"error":  err.Error(),
			"fields": fieldsErr.Fields(),
		})

	// Невалидные данные / бизнес-правила
	case errors.Is(err, identity.ErrInvalidRoleFields),
		errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrRoleChangeNotAllowed),
		errors.Is(err, services.ErrPlayerAgeOutOfRange),
		errors.Is(err, services.ErrUnsupportedPhotoType):
		rs.badRequestResponse(w, r, err)

	// Одинаковый ответ для неверного email и неверного пароля
	case errors.Is(err, services.ErrAuthInvalidCredentials):
		rs.message(w, r, http.StatusUnauthorized, services.ErrAuthInvalidCredentials.Error())

	case errors.Is(err, services.ErrForbiddenOperation):
		rs.message(w, r, http.StatusForbidden, "forbidden")

	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrCoachNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrPlayerNotInGroup):
		rs.message(w, r, http.StatusNotFound, err.Error())

	// Конфликты
	case errors.Is(err, services.ErrEmailConflict),
		errors.Is(err, services.ErrCoachHasGroups):
		rs.message(w, r, http.StatusConflict, err.Error())

	// Нарушение целостности данных: клиенту общий ответ, в лог алерт
	case errors.Is(err, identity.ErrProfileMissing):
		rs.logger.ErrorContext(r.Context(), "account profile missing",
			slog.Bool("alert", true),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		rs.message(w, r, http.StatusInternalServerError, internalErrorMessage)

	case errors.Is(err, services.ErrUploaderUnavailable):
		rs.message(w, r, http.StatusServiceUnavailable, err.Error())

	default:
		rs.serverErrorResponse(w, r, err)
	}
}
