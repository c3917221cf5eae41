package mongodb

import (
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

// Ids are stored as their string form so documents stay readable from the
// shell.

type pollDocument struct {
	ID         string              `bson:"_id"`
	User       string              `bson:"user"`
	OrgName    string              `bson:"orgname"`
	OrganImg   string              `bson:"organImg"`
	Candidates []candidateDocument `bson:"candidates"`
	Voted      []string            `bson:"voted"`
	Version    int64               `bson:"version"`
	CreatedAt  time.Time           `bson:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at"`
}

type candidateDocument struct {
	ID          string `bson:"_id"`
	FullName    string `bson:"fullname"`
	Description string `bson:"description"`
	CanImg      string `bson:"canImg"`
	Votes       int64  `bson:"votes"`
}

type userDocument struct {
	ID         string    `bson:"_id"`
	Username   string    `bson:"username"`
	Email      string    `bson:"email"`
	Password   string    `bson:"password"`
	ProfileImg string    `bson:"profileImg"`
	Organs     []string  `bson:"organs"`
	CreatedAt  time.Time `bson:"created_at"`
}

func toPollDocument(p *domain.Poll) pollDocument {
	return pollDocument{
		ID:         p.ID.String(),
		User:       p.Owner.ID.String(),
		OrgName:    p.Title,
		OrganImg:   p.Image,
		Candidates: toCandidateDocuments(p.Candidates),
		Voted:      idStrings(p.Voted),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toCandidateDocuments(candidates []domain.Candidate) []candidateDocument {
	docs := make([]candidateDocument, 0, len(candidates))
	for _, c := range candidates {
		docs = append(docs, candidateDocument{
			ID:          c.ID.String(),
			FullName:    c.FullName,
			Description: c.Description,
			CanImg:      c.Image,
			Votes:       c.Votes,
		})
	}
	return docs
}

func (d pollDocument) toDomain() (*domain.Poll, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(d.User)
	if err != nil {
		return nil, err
	}
	voted, err := parseIDs(d.Voted)
	if err != nil {
		return nil, err
	}

	poll := &domain.Poll{
		ID:         id,
		Owner:      domain.OwnerRef{ID: owner},
		Title:      d.OrgName,
		Image:      d.OrganImg,
		Candidates: make([]domain.Candidate, 0, len(d.Candidates)),
		Voted:      voted,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, c := range d.Candidates {
		cid, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, err
		}
		poll.Candidates = append(poll.Candidates, domain.Candidate{
			ID:          cid,
			FullName:    c.FullName,
			Description: c.Description,
			Image:       c.CanImg,
			Votes:       c.Votes,
		})
	}
	return poll, nil
}

func toUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		Password:   u.PasswordHash,
		ProfileImg: u.ProfileImage,
		Organs:     idStrings(u.Organs),
		CreatedAt:  u.CreatedAt,
	}
}

func (d userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	organs, err := parseIDs(d.Organs)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           id,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		ProfileImage: d.ProfileImg,
		Organs:       organs,
		CreatedAt:    d.CreatedAt,
	}, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
