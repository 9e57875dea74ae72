package dynamo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/awap-platform/internal/domain/submission"
)

// Submissions live under their team's partition: pk=team:<name>,
// sk=submission:<object key>.
type submissionItem struct {
	PK           string    `dynamodbav:"pk"`
	SK           string    `dynamodbav:"sk"`
	RecordType   string    `dynamodbav:"record_type"`
	ObjectKey    string    `dynamodbav:"object_key"`
	Team         string    `dynamodbav:"team"`
	UploadedName string    `dynamodbav:"uploaded_name"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
}

type SubmissionRepository struct {
	table *Table
}

func NewSubmissionRepository(table *Table) *SubmissionRepository {
	return &SubmissionRepository{table: table}
}

func (r *SubmissionRepository) Create(ctx context.Context, s submission.Submission) error {
	if err := s.Validate(); err != nil {
		return crerr.Wrap(err, "invalid submission")
	}

	createdAt := s.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	created, err := r.table.putNew(ctx, submissionItem{
		PK:           teamKey(s.Team),
		SK:           submissionSK(s.ObjectKey),
		RecordType:   recordSubmission,
		ObjectKey:    s.ObjectKey,
		Team:         s.Team,
		UploadedName: s.UploadedName,
		CreatedAt:    createdAt,
	})
	if err != nil {
		return crerr.Wrapf(err, "create submission key=%s", s.ObjectKey)
	}
	if !created {
		return crerr.Wrapf(submission.ErrAlreadyExists, "%s", s.ObjectKey)
	}
	return nil
}

func (r *SubmissionRepository) Get(ctx context.Context, teamName, objectKey string) (submission.Submission, bool, error) {
	var item submissionItem
	found, err := r.table.getItem(ctx, teamKey(teamName), submissionSK(objectKey), &item)
	if err != nil || !found {
		return submission.Submission{}, false, err
	}
	return item.toDomain(), true, nil
}

func (r *SubmissionRepository) ListByTeam(ctx context.Context, teamName string) ([]submission.Submission, error) {
	raw, err := r.table.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table.name),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     stringValue(teamKey(teamName)),
			":prefix": stringValue(submissionSK("")),
		},
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "list submissions team=%s", teamName)
	}
	return decodeSubmissions(raw)
}

func (r *SubmissionRepository) ListAll(ctx context.Context) ([]submission.Submission, error) {
	raw, err := r.table.queryRecords(ctx, recordSubmission, "", nil, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "list all submissions")
	}
	return decodeSubmissions(raw)
}

func decodeSubmissions(raw []map[string]types.AttributeValue) ([]submission.Submission, error) {
	var items []submissionItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, crerr.Wrap(err, "unmarshal submissions")
	}

	out := make([]submission.Submission, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return strings.Compare(out[i].ObjectKey, out[j].ObjectKey) > 0
	})
	return out, nil
}

func (i submissionItem) toDomain() submission.Submission {
	return submission.Submission{
		ObjectKey:    i.ObjectKey,
		Team:         i.Team,
		UploadedName: i.UploadedName,
		CreatedAt:    i.CreatedAt,
	}
}
