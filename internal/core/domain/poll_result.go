package domain

import "github.com/google/uuid"

type PollResults struct {
	PollID     uuid.UUID         `json:"_id"`
	Title      string            `json:"orgname"`
	TotalVotes int64             `json:"total_votes"`
	Candidates []CandidateResult `json:"candidates"`
}

type CandidateResult struct {
	ID         uuid.UUID `json:"_id"`
	FullName   string    `json:"fullname"`
	Votes      int64     `json:"votes"`
	Percentage float64   `json:"percentage"`
}

func TallyResults(p *Poll) *PollResults {
	var total int64
	for _, c := range p.Candidates {
		total += c.Votes
	}

	results := &PollResults{
		PollID:     p.ID,
		Title:      p.Title,
		TotalVotes: total,
		Candidates: make([]CandidateResult, 0, len(p.Candidates)),
	}
	for _, c := range p.Candidates {
		percentage := 0.0
		if total > 0 {
			percentage = (float64(c.Votes) / float64(total)) * 100
		}
		results.Candidates = append(results.Candidates, CandidateResult{
			ID:         c.ID,
			FullName:   c.FullName,
			Votes:      c.Votes,
			Percentage: percentage,
		})
	}
	return results
}
