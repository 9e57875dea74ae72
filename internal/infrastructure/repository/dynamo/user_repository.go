package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
)

type userItem struct {
	PK           string    `dynamodbav:"pk"`
	SK           string    `dynamodbav:"sk"`
	RecordType   string    `dynamodbav:"record_type"`
	Username     string    `dynamodbav:"username"`
	Email        string    `dynamodbav:"email,omitempty"`
	PasswordHash string    `dynamodbav:"password_hash"`
	Role         string    `dynamodbav:"role"`
	Team         string    `dynamodbav:"team,omitempty"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
}

type UserRepository struct {
	table *Table
}

func NewUserRepository(table *Table) *UserRepository {
	return &UserRepository{table: table}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (user.User, bool, error) {
	var item userItem
	found, err := r.table.getItem(ctx, userKey(username), userKey(username), &item)
	if err != nil || !found {
		return user.User{}, false, err
	}
	return user.User{
		Username:     item.Username,
		Email:        item.Email,
		PasswordHash: item.PasswordHash,
		Role:         user.Role(item.Role),
		Team:         item.Team,
		CreatedAt:    item.CreatedAt,
	}, true, nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	if err := u.Validate(); err != nil {
		return crerr.Wrap(err, "invalid user")
	}

	createdAt := u.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	created, err := r.table.putNew(ctx, userItem{
		PK:           userKey(u.Username),
		SK:           userKey(u.Username),
		RecordType:   recordUser,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Team:         u.Team,
		CreatedAt:    createdAt,
	})
	if err != nil {
		return crerr.Wrapf(err, "create user username=%s", u.Username)
	}
	if !created {
		return crerr.Wrapf(user.ErrAlreadyExists, "%s", u.Username)
	}
	return nil
}

func (r *UserRepository) SetTeam(ctx context.Context, username, teamName string) error {
	_, err := r.table.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table.name),
		Key:                 singletonKey(userKey(username)),
		UpdateExpression:    aws.String("SET team = :team"),
		ConditionExpression: aws.String("attribute_exists(pk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":team": stringValue(teamName),
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return crerr.Wrapf(user.ErrNotFound, "%s", username)
		}
		return crerr.Wrapf(err, "set team username=%s", username)
	}
	return nil
}
