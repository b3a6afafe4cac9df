package main

import (
	"encoding/json"
	"net/http"

	"github.com/safar/storefront/internal/apperr"
	"github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.Errorf("encode json response: %v", err)
	}
}

func respondValidation(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorBody(apperr.KindValidation, message))
}

// respondError maps the error's kind to a status code. Internal faults
// are logged server-side and never leak their message to the client.
func respondError(w http.ResponseWriter, log *logrus.Logger, err error) {
	kind := apperr.KindOf(err)
	message := err.Error()

	if kind == apperr.KindInternal {
		log.WithError(err).Error("request failed")
		message = "internal server error"
	}

	respondJSON(w, statusForKind(kind), errorBody(kind, message))
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(kind apperr.Kind, message string) map[string]any {
	return map[string]any{
		"error": map[string]string{
			"kind":    string(kind),
			"message": message,
		},
	}
}
