package http

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type VoteHandler struct {
	service ports.BallotService
}

func NewVoteHandler(service ports.BallotService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	Answer string `json:"answer"`
}

// Vote godoc
// @Summary      Casts the caller's vote
// @Description  The body names the chosen candidate's fullname in "answer". Each identity votes once per poll.
// @Tags         organs
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Router       /organs/{id}/vote [post]
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, r, domain.ErrMissingToken)
		return
	}
	pollID, err := pollIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req voteRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, domain.ErrInvalidRequest)
			return
		}
	} else {
		req.Answer = r.FormValue("answer")
	}

	poll, err := h.service.CastVote(r.Context(), ports.VoteInput{
		PollID:    pollID,
		VoterID:   userID,
		Candidate: req.Answer,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, poll)
}
