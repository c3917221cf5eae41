package mongodb

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ownershipRepository struct {
	polls *mongo.Collection
	users *mongo.Collection
}

func NewOwnershipRepository(db *mongo.Database) ports.OwnershipRepository {
	return &ownershipRepository{
		polls: db.Collection(pollsCollection),
		users: db.Collection(usersCollection),
	}
}

func (r *ownershipRepository) ListOwnerIDs(ctx context.Context) ([]uuid.UUID, error) {
	raw, err := r.users.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, mapMongoError(fmt.Errorf("failed to list owners: %w", err))
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ReconcileOwner pulls organs entries that do not resolve to a poll of the
// owner and adds owned polls missing from the list.
func (r *ownershipRepository) ReconcileOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	owner := ownerID.String()

	var user userDocument
	err := r.users.FindOne(ctx, bson.M{"_id": owner}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, mapMongoError(fmt.Errorf("failed to get owner: %w", err))
	}

	cursor, err := r.polls.Find(ctx, bson.M{"user": owner},
		options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "$natural", Value: 1}}))
	if err != nil {
		return 0, mapMongoError(fmt.Errorf("failed to find owned polls: %w", err))
	}
	var owned []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &owned); err != nil {
		return 0, mapMongoError(fmt.Errorf("failed to decode owned polls: %w", err))
	}

	ownedIDs := make([]string, 0, len(owned))
	for _, p := range owned {
		ownedIDs = append(ownedIDs, p.ID)
	}

	var dangling, missing []string
	for _, id := range user.Organs {
		if !slices.Contains(ownedIDs, id) {
			dangling = append(dangling, id)
		}
	}
	for _, id := range ownedIDs {
		if !slices.Contains(user.Organs, id) {
			missing = append(missing, id)
		}
	}

	if len(dangling) > 0 {
		_, err := r.users.UpdateOne(ctx, bson.M{"_id": owner}, bson.M{"$pull": bson.M{"organs": bson.M{"$in": dangling}}})
		if err != nil {
			return 0, mapMongoError(fmt.Errorf("failed to pull dangling polls: %w", err))
		}
	}
	if len(missing) > 0 {
		_, err := r.users.UpdateOne(ctx, bson.M{"_id": owner}, bson.M{"$addToSet": bson.M{"organs": bson.M{"$each": missing}}})
		if err != nil {
			return len(dangling), mapMongoError(fmt.Errorf("failed to add missing polls: %w", err))
		}
	}

	return len(dangling) + len(missing), nil
}
