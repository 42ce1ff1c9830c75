package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/linguacenter/apiserver/internal/apperr"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

var validate = validator.New()

func userIDFromContext(ctx context.Context) (int, error) {
	value := ctx.Value(contextSubjectKey)
	switch subject := value.(type) {
	case int:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return subject, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(subject))
		if err != nil || parsed < 1 {
			return 0, errors.New("invalid subject")
		}
		return parsed, nil
	default:
		return 0, errors.New("missing subject")
	}
}

// ErrorResponse is the envelope for every error reply.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: true, Message: message})
}

// writeDomainError translates service-layer errors into the envelope.
// Domain errors carry their own status; anything else is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		writeJSON(w, domainErr.HTTPStatus(), ErrorResponse{
			Error:   true,
			Message: domainErr.Message,
			Details: domainErr.Details,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// validateStruct runs the request struct through the validator and converts
// failures into a Validation domain error with per-field details.
func validateStruct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[strings.ToLower(fe.Field())] = "failed " + fe.Tag() + " validation"
		}
		return apperr.Validation("invalid request", details)
	}
	return apperr.Validation("invalid request", nil)
}

func parseIDParam(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
