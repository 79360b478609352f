package rulesRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"meetsync/database"
	"meetsync/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// approvalRule is the stored rule shape: which approvers a booking needs,
// matched by booking type and optionally by resource type. An empty
// bookingType or resourceType matches everything.
type approvalRule struct {
	BookingType  string                `bson:"bookingType,omitempty"`
	ResourceType string                `bson:"resourceType,omitempty"`
	Approvers    []models.ApproverRule `bson:"approvers"`
}

// MongoRuleSource resolves approver rules from the approval_rules collection.
type MongoRuleSource struct {
	coll *mongo.Collection
}

func NewMongoRuleSource() *MongoRuleSource {
	return &MongoRuleSource{
		coll: database.MongoClient.Database("meetsync").Collection("approval_rules"),
	}
}

// ResolveApprovers gathers approvers from every rule matching the booking,
// deduplicated by approver id (lowest level wins), ordered by level.
func (s *MongoRuleSource) ResolveApprovers(ctx context.Context, b *models.Booking) ([]models.ApproverRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resourceTypes := make([]string, 0, len(b.Resources))
	for _, r := range b.Resources {
		resourceTypes = append(resourceTypes, r.Type)
	}

	filter := bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"bookingType": string(b.Type)},
				bson.M{"bookingType": bson.M{"$exists": false}},
				bson.M{"bookingType": ""},
			}},
			bson.M{"$or": bson.A{
				bson.M{"resourceType": bson.M{"$in": resourceTypes}},
				bson.M{"resourceType": bson.M{"$exists": false}},
				bson.M{"resourceType": ""},
			}},
		},
	}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("approver rule query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []approvalRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("error decoding approver rules: %w", err)
	}

	byApprover := make(map[string]models.ApproverRule)
	for _, rule := range rules {
		for _, a := range rule.Approvers {
			if existing, ok := byApprover[a.ApproverID]; !ok || a.Level < existing.Level {
				byApprover[a.ApproverID] = a
			}
		}
	}

	resolved := make([]models.ApproverRule, 0, len(byApprover))
	for _, a := range byApprover {
		resolved = append(resolved, a)
	}
	sort.Slice(resolved, func(i, j int) bool {
		if resolved[i].Level != resolved[j].Level {
			return resolved[i].Level < resolved[j].Level
		}
		return resolved[i].ApproverID < resolved[j].ApproverID
	})
	return resolved, nil
}
