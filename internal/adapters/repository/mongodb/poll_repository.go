package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errVersionConflict = errors.New("poll changed concurrently")

type pollRepository struct {
	polls *mongo.Collection
	users *mongo.Collection
}

func NewPollRepository(db *mongo.Database) ports.PollRepository {
	return &pollRepository{
		polls: db.Collection(pollsCollection),
		users: db.Collection(usersCollection),
	}
}

// Create inserts the poll and then appends it to the owner's organs list.
// When the owner update cannot be applied the inserted poll is deleted again.
func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	if _, err := r.polls.InsertOne(ctx, toPollDocument(poll)); err != nil {
		return mapMongoError(fmt.Errorf("failed to insert poll: %w", err))
	}

	_, err := retry(ctx, func() (struct{}, error) {
		res, err := r.users.UpdateOne(ctx,
			bson.M{"_id": poll.Owner.ID.String()},
			bson.M{"$addToSet": bson.M{"organs": poll.ID.String()}},
		)
		if err != nil {
			return struct{}{}, err
		}
		if res.MatchedCount == 0 {
			return struct{}{}, backoff.Permanent(domain.ErrUserNotFound)
		}
		return struct{}{}, nil
	})
	if err == nil {
		log.Ctx(ctx).Debug().Str("poll_id", poll.ID.String()).Msg("poll inserted")
		return nil
	}

	r.compensateCreate(ctx, poll.ID)
	return mapMongoError(err)
}

func (r *pollRepository) compensateCreate(ctx context.Context, pollID uuid.UUID) {
	// The request context may already be done; the cleanup still has to run.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	_, err := retry(cleanupCtx, func() (*mongo.DeleteResult, error) {
		return r.polls.DeleteOne(cleanupCtx, bson.M{"_id": pollID.String()})
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("poll_id", pollID.String()).Msg("failed to remove poll after owner update failed")
		return
	}
	log.Ctx(ctx).Warn().Str("poll_id", pollID.String()).Msg("poll creation rolled back")
}

func (r *pollRepository) findPoll(ctx context.Context, id uuid.UUID) (*pollDocument, error) {
	var doc pollDocument
	err := r.polls.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPollNotFound
		}
		return nil, mapMongoError(fmt.Errorf("failed to get poll: %w", err))
	}
	return &doc, nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	doc, err := r.findPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *pollRepository) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]*domain.Poll, error) {
	cursor, err := r.polls.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapMongoError(fmt.Errorf("failed to find polls: %w", err))
	}

	var docs []pollDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapMongoError(fmt.Errorf("failed to decode polls: %w", err))
	}

	polls := make([]*domain.Poll, 0, len(docs))
	for _, doc := range docs {
		poll, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}
	return polls, nil
}

// ListByOwner follows the owner's organs list. Ids that no longer resolve to
// a poll of that owner are skipped.
func (r *pollRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Poll, error) {
	var owner userDocument
	err := r.users.FindOne(ctx, bson.M{"_id": ownerID.String()}).Decode(&owner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []*domain.Poll{}, nil
		}
		return nil, mapMongoError(fmt.Errorf("failed to get owner: %w", err))
	}
	if len(owner.Organs) == 0 {
		return []*domain.Poll{}, nil
	}

	found, err := r.find(ctx, bson.M{"_id": bson.M{"$in": owner.Organs}, "user": owner.ID})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Poll, len(found))
	for _, p := range found {
		byID[p.ID.String()] = p
	}

	polls := make([]*domain.Poll, 0, len(found))
	for _, id := range owner.Organs {
		if p, ok := byID[id]; ok {
			polls = append(polls, p)
		}
	}
	return polls, nil
}

// Update retries on a version mismatch so concurrent votes are never lost.
func (r *pollRepository) Update(ctx context.Context, id uuid.UUID, changes domain.PollChanges) (*domain.Poll, error) {
	poll, err := retry(ctx, func() (*domain.Poll, error) {
		doc, err := r.findPoll(ctx, id)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		poll, err := doc.toDomain()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		poll.Apply(changes, time.Now())

		res, err := r.polls.UpdateOne(ctx,
			bson.M{"_id": doc.ID, "version": doc.Version},
			bson.M{
				"$set": bson.M{
					"orgname":    poll.Title,
					"organImg":   poll.Image,
					"candidates": toCandidateDocuments(poll.Candidates),
					"updated_at": poll.UpdatedAt,
				},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return nil, backoff.Permanent(mapMongoError(err))
		}
		if res.MatchedCount == 0 {
			return nil, errVersionConflict
		}
		return poll, nil
	})
	if err != nil {
		return nil, mapMongoError(err)
	}

	log.Ctx(ctx).Debug().Str("poll_id", id.String()).Msg("poll updated")
	return poll, nil
}

// Delete removes the poll and pulls it from the owner's organs list. A failed
// pull leaves a dangling id that reads skip and the reconciler removes.
func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	res, err := r.polls.DeleteOne(ctx, bson.M{"_id": id.String(), "user": ownerID.String()})
	if err != nil {
		return mapMongoError(fmt.Errorf("failed to delete poll: %w", err))
	}
	if res.DeletedCount == 0 {
		if _, err := r.findPoll(ctx, id); err != nil {
			return err
		}
		return domain.ErrForbidden
	}

	_, err = retry(ctx, func() (*mongo.UpdateResult, error) {
		return r.users.UpdateOne(ctx,
			bson.M{"_id": ownerID.String()},
			bson.M{"$pull": bson.M{"organs": id.String()}},
		)
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("poll_id", id.String()).Msg("failed to detach deleted poll from owner")
	}

	log.Ctx(ctx).Debug().Str("poll_id", id.String()).Msg("poll deleted")
	return nil
}

// CastVote applies the vote with a single findOneAndUpdate guarded by
// voted != voter. When nothing matched, a plain read tells which guard failed.
func (r *pollRepository) CastVote(ctx context.Context, pollID, voterID uuid.UUID, candidate string) (ports.VoteResult, error) {
	voter := voterID.String()

	filter := bson.M{
		"_id":                 pollID.String(),
		"voted":               bson.M{"$ne": voter},
		"candidates.fullname": candidate,
	}
	update := bson.M{
		"$addToSet": bson.M{"voted": voter},
		"$inc":      bson.M{"candidates.$[c].votes": 1, "version": 1},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []any{bson.M{"c.fullname": candidate}}}).
		SetReturnDocument(options.After)

	var doc pollDocument
	err := r.polls.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		poll, err := doc.toDomain()
		if err != nil {
			return ports.VoteResult{}, err
		}
		return ports.VoteResult{Outcome: ports.VoteApplied, Poll: poll}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return ports.VoteResult{}, mapMongoError(fmt.Errorf("failed to cast vote: %w", err))
	}

	current, err := r.GetByID(ctx, pollID)
	if err != nil {
		return ports.VoteResult{}, err
	}
	if current.HasVoted(voterID) {
		return ports.VoteResult{Outcome: ports.VoteAlreadyCast}, nil
	}
	return ports.VoteResult{Outcome: ports.VoteUnknownCandidate}, nil
}
