package dynamo

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
)

type teamItem struct {
	PK            string    `dynamodbav:"pk"`
	SK            string    `dynamodbav:"sk"`
	RecordType    string    `dynamodbav:"record_type"`
	Name          string    `dynamodbav:"name"`
	Bracket       string    `dynamodbav:"bracket"`
	Members       []string  `dynamodbav:"members"`
	ActiveVersion string    `dynamodbav:"active_version,omitempty"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
	UpdatedAt     time.Time `dynamodbav:"updated_at"`
}

func (i teamItem) toDomain() team.Team {
	return team.Team{
		Name:          i.Name,
		Bracket:       team.Bracket(i.Bracket),
		Members:       i.Members,
		ActiveVersion: i.ActiveVersion,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

type TeamRepository struct {
	table *Table
}

func NewTeamRepository(table *Table) *TeamRepository {
	return &TeamRepository{table: table}
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (team.Team, bool, error) {
	var item teamItem
	found, err := r.table.getItem(ctx, teamKey(name), teamKey(name), &item)
	if err != nil || !found {
		return team.Team{}, false, err
	}
	return item.toDomain(), true, nil
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) error {
	if err := t.Validate(); err != nil {
		return crerr.Wrap(err, "invalid team")
	}

	createdAt := t.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	created, err := r.table.putNew(ctx, teamItem{
		PK:            teamKey(t.Name),
		SK:            teamKey(t.Name),
		RecordType:    recordTeam,
		Name:          t.Name,
		Bracket:       string(t.Bracket),
		Members:       t.Members,
		ActiveVersion: t.ActiveVersion,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	})
	if err != nil {
		return crerr.Wrapf(err, "create team name=%s", t.Name)
	}
	if !created {
		return crerr.Wrapf(team.ErrAlreadyExists, "%s", t.Name)
	}
	return nil
}

// ListEligible follows the scan the scrimmage round has always used: every
// team record with a non-empty active_version.
func (r *TeamRepository) ListEligible(ctx context.Context, filter team.EligibilityFilter) ([]team.Team, error) {
	expr := "record_type = :record_type AND attribute_exists(active_version) AND active_version <> :empty"
	values := map[string]types.AttributeValue{
		":record_type": stringValue(recordTeam),
		":empty":       stringValue(""),
	}
	if filter.Bracket != "" {
		expr += " AND #bracket = :bracket"
		values[":bracket"] = stringValue(string(filter.Bracket))
	}

	raw, err := r.table.parallelScan(ctx, expr, map[string]string{"#bracket": "bracket"}, values)
	if err != nil {
		return nil, crerr.Wrap(err, "scan eligible teams")
	}

	var items []teamItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, crerr.Wrap(err, "unmarshal eligible teams")
	}

	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		out = append(out, item.toDomain())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TeamRepository) SetActiveVersion(ctx context.Context, name, objectKey string, at time.Time) error {
	return r.update(ctx, name, "SET active_version = :version, updated_at = :at", map[string]types.AttributeValue{
		":version": stringValue(objectKey),
		":at":      timeValue(at),
	})
}

func (r *TeamRepository) SetBracket(ctx context.Context, name string, bracket team.Bracket, at time.Time) error {
	return r.update(ctx, name, "SET #bracket = :bracket, updated_at = :at", map[string]types.AttributeValue{
		":bracket": stringValue(string(bracket)),
		":at":      timeValue(at),
	})
}

func (r *TeamRepository) AddMember(ctx context.Context, name, username string, at time.Time) error {
	_, err := r.table.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table.name),
		Key:                 singletonKey(teamKey(name)),
		UpdateExpression:    aws.String("SET #members = list_append(if_not_exists(#members, :empty), :member), updated_at = :at"),
		ConditionExpression: aws.String("attribute_exists(pk) AND NOT contains(#members, :username)"),
		ExpressionAttributeNames: map[string]string{
			"#members": "members",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty":    &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":member":   &types.AttributeValueMemberL{Value: []types.AttributeValue{stringValue(username)}},
			":username": stringValue(username),
			":at":       timeValue(at),
		},
	})
	if err == nil {
		return nil
	}
	if !isConditionFailed(err) {
		return crerr.Wrapf(err, "add member team=%s", name)
	}

	// Either the team is gone or the user is already listed.
	_, found, getErr := r.GetByName(ctx, name)
	if getErr != nil {
		return getErr
	}
	if !found {
		return crerr.Wrapf(team.ErrNotFound, "%s", name)
	}
	return nil
}

func (r *TeamRepository) update(ctx context.Context, name, expr string, values map[string]types.AttributeValue) error {
	_, err := r.table.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.name),
		Key:                       singletonKey(teamKey(name)),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(pk)"),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  attributeNames(expr, map[string]string{"#bracket": "bracket"}),
	})
	if err != nil {
		if isConditionFailed(err) {
			return crerr.Wrapf(team.ErrNotFound, "%s", name)
		}
		return crerr.Wrapf(err, "update team name=%s", name)
	}
	return nil
}
