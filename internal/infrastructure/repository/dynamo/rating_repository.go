package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/awap-platform/internal/domain/rating"
)

type ratingItem struct {
	Team      string    `dynamodbav:"team"`
	Rating    float64   `dynamodbav:"rating"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// RatingRepository reads the append-only rating snapshots; the leaderboard
// keeps the latest per team.
type RatingRepository struct {
	table *Table
}

func NewRatingRepository(table *Table) *RatingRepository {
	return &RatingRepository{table: table}
}

func (r *RatingRepository) List(ctx context.Context) ([]rating.Entry, error) {
	raw, err := r.table.parallelScan(ctx, "record_type = :record_type", nil, map[string]types.AttributeValue{
		":record_type": stringValue(recordRating),
	})
	if err != nil {
		return nil, crerr.Wrap(err, "scan ratings")
	}

	var items []ratingItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, crerr.Wrap(err, "unmarshal ratings")
	}

	out := make([]rating.Entry, 0, len(items))
	for _, item := range items {
		out = append(out, rating.Entry{Team: item.Team, Rating: item.Rating, UpdatedAt: item.UpdatedAt})
	}
	return out, nil
}
