package dynamo

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/awap-platform/internal/domain/match"
)

// matchItem mirrors the record the matchmaking service writes.
type matchItem struct {
	PK         string    `dynamodbav:"pk"`
	SK         string    `dynamodbav:"sk"`
	RecordType string    `dynamodbav:"record_type"`
	MatchID    string    `dynamodbav:"match_id"`
	Category   string    `dynamodbav:"category"`
	Team1      string    `dynamodbav:"team1"`
	Team2      string    `dynamodbav:"team2"`
	Status     string    `dynamodbav:"item_status"`
	Outcome    string    `dynamodbav:"outcome,omitempty"`
	ReplayKey  string    `dynamodbav:"s3_key,omitempty"`
	CreatedAt  time.Time `dynamodbav:"created_at"`
}

type MatchRepository struct {
	table *Table
}

func NewMatchRepository(table *Table) *MatchRepository {
	return &MatchRepository{table: table}
}

func (r *MatchRepository) ListByTeam(ctx context.Context, teamName string) ([]match.Match, error) {
	return r.list(ctx, "team1 = :team OR team2 = :team", map[string]types.AttributeValue{
		":team": stringValue(teamName),
	})
}

func (r *MatchRepository) ListByCategory(ctx context.Context, category match.Category) ([]match.Match, error) {
	if category == "" {
		return r.list(ctx, "", nil)
	}
	return r.list(ctx, "#category = :category", map[string]types.AttributeValue{
		":category": stringValue(string(category)),
	})
}

func (r *MatchRepository) ListPendingBetween(ctx context.Context, team1, team2 string) ([]match.Match, error) {
	return r.list(ctx, "team1 = :team1 AND team2 = :team2 AND item_status = :pending", map[string]types.AttributeValue{
		":team1":   stringValue(team1),
		":team2":   stringValue(team2),
		":pending": stringValue(string(match.StatusPending)),
	})
}

func (r *MatchRepository) list(ctx context.Context, filter string, values map[string]types.AttributeValue) ([]match.Match, error) {
	raw, err := r.table.queryRecords(ctx, recordMatch, filter, map[string]string{"#category": "category"}, values)
	if err != nil {
		return nil, crerr.Wrap(err, "query matches")
	}

	var items []matchItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, crerr.Wrap(err, "unmarshal matches")
	}

	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		out = append(out, match.Match{
			ID:        item.MatchID,
			Category:  match.Category(item.Category),
			Team1:     item.Team1,
			Team2:     item.Team2,
			Status:    match.Status(item.Status),
			Outcome:   match.Outcome(item.Outcome),
			ReplayKey: item.ReplayKey,
			CreatedAt: item.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type reservationItem struct {
	PK         string `dynamodbav:"pk"`
	SK         string `dynamodbav:"sk"`
	RecordType string `dynamodbav:"record_type"`
	Team1      string `dynamodbav:"team1"`
	Team2      string `dynamodbav:"team2"`
	Token      string `dynamodbav:"token"`
	// ExpiresAt is epoch seconds so the table TTL can reap stale rows.
	ExpiresAt int64 `dynamodbav:"expires_at"`
}

type ReservationRepository struct {
	table *Table
}

func NewReservationRepository(table *Table) *ReservationRepository {
	return &ReservationRepository{table: table}
}

func (r *ReservationRepository) Reserve(ctx context.Context, res match.Reservation, now time.Time) (bool, error) {
	k := reservationKey(res.Team1, res.Team2)
	av, err := attributevalue.MarshalMap(reservationItem{
		PK:         k,
		SK:         k,
		RecordType: recordReservation,
		Team1:      res.Team1,
		Team2:      res.Team2,
		Token:      res.Token,
		ExpiresAt:  res.ExpiresAt.Unix(),
	})
	if err != nil {
		return false, crerr.Wrap(err, "marshal reservation")
	}

	_, err = r.table.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table.name),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(pk) OR expires_at <= :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, crerr.Wrapf(err, "reserve match team1=%s team2=%s", res.Team1, res.Team2)
	}
	return true, nil
}

func (r *ReservationRepository) Release(ctx context.Context, team1, team2, token string) error {
	_, err := r.table.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table.name),
		Key:                 singletonKey(reservationKey(team1, team2)),
		ConditionExpression: aws.String("#token = :token"),
		ExpressionAttributeNames: map[string]string{
			"#token": "token",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": stringValue(token),
		},
	})
	if err != nil && !isConditionFailed(err) {
		return crerr.Wrapf(err, "release match team1=%s team2=%s", team1, team2)
	}
	return nil
}
