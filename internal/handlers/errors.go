package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"feedback/internal/service"
)

// respondWithJSON writes a JSON payload with the given status code
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := JSONResponse(w, payload); err != nil {
		w.Write([]byte(`{"error":"Internal server error"}`))
	}
}

// respondWithError writes a JSON error body
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service layer errors to HTTP status codes:
// missing entities to 404, unmet state preconditions to 412, malformed
// input to 400 and permission failures to 403. Everything else is a 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var notFound *service.NotFoundError
	var precondition *service.PreconditionError
	var validation *service.ValidationError
	var accessDenied *service.AccessDeniedError

	switch {
	case errors.As(err, &notFound):
		respondWithError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &precondition):
		respondWithError(w, http.StatusPreconditionFailed, precondition.Error())
	case errors.As(err, &validation):
		respondWithError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &accessDenied):
		respondWithError(w, http.StatusForbidden, accessDenied.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parsePathID extracts a numeric path parameter
func parsePathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func getIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
