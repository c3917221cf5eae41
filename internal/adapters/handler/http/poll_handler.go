package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type PollHandler struct {
	service  ports.PollService
	uploader *Uploader
}

func NewPollHandler(service ports.PollService, uploader *Uploader) *PollHandler {
	return &PollHandler{
		service:  service,
		uploader: uploader,
	}
}

// pollIDParam treats a malformed id like an unknown poll.
func pollIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.ErrPollNotFound
	}
	return id, nil
}

// parseCandidates decodes the candidates form field, a JSON array of
// {fullname, description}. ok is false when the field is absent.
func parseCandidates(r *http.Request) (candidates []ports.CandidateInput, ok bool, err error) {
	if _, present := r.Form["candidates"]; !present {
		return nil, false, nil
	}
	raw := r.FormValue("candidates")
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, true, domain.ErrInvalidRequest
	}
	if candidates == nil {
		candidates = []ports.CandidateInput{}
	}
	return candidates, true, nil
}

// ListDistinctNames godoc
// @Summary      Lists one entry per distinct poll title
// @Tags         organs
// @Produce      json
// @Success      201
// @Router       /organs [get]
func (h *PollHandler) ListDistinctNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListDistinctNames(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, names)
}

func (h *PollHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

// CreatePoll godoc
// @Summary      Creates a poll owned by the caller
// @Description  Multipart form with orgname, candidates (JSON array) and an optional image.
// @Tags         organs
// @Accept       multipart/form-data
// @Produce      json
// @Success      201
// @Failure      400
// @Router       /organs [post]
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, r, domain.ErrMissingToken)
		return
	}
	if err := h.uploader.parseForm(w, r); err != nil {
		writeError(w, r, err)
		return
	}

	candidates, _, err := parseCandidates(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	image, err := h.uploader.saveImage(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}

	poll, err := h.service.Create(r.Context(), ports.CreatePollInput{
		OwnerID:    userID,
		Title:      r.FormValue("orgname"),
		Image:      image,
		Candidates: candidates,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, poll)
}

func (h *PollHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, r, domain.ErrMissingToken)
		return
	}

	polls, err := h.service.ListOwnedBy(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := pollIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	poll, err := h.service.GetPoll(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

// UpdatePoll godoc
// @Summary      Replaces a poll's title, candidates or image
// @Description  Fields left out of the form are unchanged.
// @Tags         organs
// @Accept       multipart/form-data
// @Produce      json
// @Success      200
// @Failure      400
// @Failure      404
// @Router       /organs/{id} [put]
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	id, err := pollIDParam(r)
	if err != nil {
		writeErrorStatus(w, r, err, http.StatusNotFound)
		return
	}
	if err := h.uploader.parseForm(w, r); err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.UpdatePollInput{PollID: id}
	if _, present := r.Form["orgname"]; present {
		title := r.FormValue("orgname")
		input.Title = &title
	}
	candidates, present, err := parseCandidates(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if present {
		input.Candidates = candidates
	}
	image, err := h.uploader.saveImage(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if image != "" {
		input.Image = &image
	}

	poll, err := h.service.Update(r.Context(), input)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			writeErrorStatus(w, r, err, http.StatusNotFound)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, r, domain.ErrMissingToken)
		return
	}
	id, err := pollIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	poll, err := h.service.Delete(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, poll)
}

func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	id, err := pollIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	results, err := h.service.Results(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
