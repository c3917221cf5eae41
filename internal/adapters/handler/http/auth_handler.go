package http

import (
	"net/http"

	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	uploader    *Uploader
}

func NewAuthHandler(authService ports.AuthService, uploader *Uploader) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		uploader:    uploader,
	}
}

// SignUp godoc
// @Summary      Registers a new identity
// @Description  Multipart form with username, email, password and an optional profile image.
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Success      200
// @Failure      400
// @Router       /signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := h.uploader.parseForm(w, r); err != nil {
		writeError(w, r, err)
		return
	}

	profileImage, err := h.uploader.saveImage(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.SignUp(r.Context(), ports.SignUpInput{
		Username:     r.FormValue("username"),
		Email:        r.FormValue("email"),
		Password:     r.FormValue("password"),
		ProfileImage: profileImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: user})
}

// SignIn godoc
// @Summary      Signs an identity in
// @Description  Returns "Bearer <token>" in the message field. The token expires after one hour.
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Success      200
// @Failure      401
// @Router       /signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := h.uploader.parseForm(w, r); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.authService.SignIn(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Bearer " + token})
}
