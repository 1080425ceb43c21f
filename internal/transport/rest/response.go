package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"lendledger/internal/domain"
)

type APIResponse struct {
	ErrorCode int    `json:"error_code"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

func (h *Handler) respond(w http.ResponseWriter, message string, data any, errorCode int, status string, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	response := APIResponse{
		ErrorCode: errorCode,
		Status:    status,
		Message:   message,
		Data:      data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Warn("write response", zap.Error(err))
	}
}

func (h *Handler) success(w http.ResponseWriter, message string, data any) {
	h.respond(w, message, data, 0, "success", http.StatusOK)
}

func (h *Handler) successCreated(w http.ResponseWriter, message string, data any) {
	h.respond(w, message, data, 0, "success", http.StatusCreated)
}

func (h *Handler) successAccepted(w http.ResponseWriter, message string, data any) {
	h.respond(w, message, data, 0, "success", http.StatusAccepted)
}

func (h *Handler) errorResponse(w http.ResponseWriter, message string, httpStatus int) {
	h.respond(w, message, nil, httpStatus, "error", httpStatus)
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	h.errorResponse(w, message, http.StatusBadRequest)
}

// respondError translates domain errors into HTTP status codes. Anything
// unrecognized is a 500 and gets logged with the request path.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := verr.Message
		if verr.Field != "" {
			msg = fmt.Sprintf("%s: %s", verr.Field, verr.Message)
		}
		h.errorResponse(w, msg, http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		h.errorResponse(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidState):
		h.errorResponse(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.errorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}
