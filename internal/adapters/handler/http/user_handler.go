package http

import (
	"net/http"

	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, r, domain.ErrMissingToken)
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			writeErrorStatus(w, r, domain.ErrInvalidToken, http.StatusUnauthorized)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
