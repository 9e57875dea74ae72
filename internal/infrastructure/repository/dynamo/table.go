package dynamo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

// Client is the subset of *dynamodb.Client the repositories call.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

const (
	attrPK         = "pk"
	attrSK         = "sk"
	attrRecordType = "record_type"

	recordTeam        = "team"
	recordUser        = "user"
	recordSubmission  = "submission"
	recordMatch       = "matchTeam"
	recordReservation = "reservation"
	recordConfig      = "config"
	recordRating      = "rating"
	recordDispatch    = "dispatch"

	configProfileKey = "config:config_profile_1"

	defaultScanSegments = 4
	maxScanSegments     = 32
)

type TableConfig struct {
	Name string
	// RecordIndex is a GSI partitioned on record_type.
	RecordIndex  string
	ScanSegments int
}

// Table holds every record kind in one DynamoDB table keyed by pk/sk.
type Table struct {
	client       Client
	name         string
	recordIndex  string
	scanSegments int
}

func NewTable(client Client, cfg TableConfig) (*Table, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, crerr.New("DYNAMODB_TABLE is required")
	}
	index := strings.TrimSpace(cfg.RecordIndex)
	if index == "" {
		return nil, crerr.New("DYNAMODB_RECORD_INDEX is required")
	}
	segments := cfg.ScanSegments
	if segments <= 0 {
		segments = defaultScanSegments
	}
	if segments > maxScanSegments {
		segments = maxScanSegments
	}

	return &Table{
		client:       client,
		name:         name,
		recordIndex:  index,
		scanSegments: segments,
	}, nil
}

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: pk},
		attrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

func singletonKey(pk string) map[string]types.AttributeValue {
	return key(pk, pk)
}

func teamKey(name string) string { return "team:" + name }

func userKey(username string) string { return "user:" + username }

func matchKey(id string) string { return "match:" + id }

func dispatchKey(id string) string { return "dispatch:" + id }

func submissionSK(objectKey string) string { return "submission:" + objectKey }

func reservationKey(team1, team2 string) string {
	return "reservation:" + team1 + "#" + team2
}

func stringValue(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func timeValue(at time.Time) types.AttributeValue {
	if at.IsZero() {
		at = time.Now()
	}
	return &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)}
}

// attributeNames keeps only the placeholders expr references; DynamoDB
// rejects unused ExpressionAttributeNames.
func attributeNames(expr string, names map[string]string) map[string]string {
	var out map[string]string
	for placeholder, name := range names {
		if !strings.Contains(expr, placeholder) {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(names))
		}
		out[placeholder] = name
	}
	return out
}

func isConditionFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

func (t *Table) getItem(ctx context.Context, pk, sk string, out any) (bool, error) {
	resp, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            key(pk, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, crerr.Wrapf(err, "get item pk=%s", pk)
	}
	if len(resp.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return false, crerr.Wrapf(err, "unmarshal item pk=%s", pk)
	}
	return true, nil
}

// putNew writes item only when no record holds its key yet. It reports false
// when the key is taken.
func (t *Table) putNew(ctx context.Context, item any) (bool, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return false, crerr.Wrap(err, "marshal item")
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(t.name),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, crerr.Wrap(err, "put item")
	}
	return true, nil
}

// queryRecords reads every record of one type through the record index.
func (t *Table) queryRecords(ctx context.Context, recordType, filter string, names map[string]string, values map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	exprValues := map[string]types.AttributeValue{":record_type": stringValue(recordType)}
	for k, v := range values {
		exprValues[k] = v
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(t.name),
		IndexName:                 aws.String(t.recordIndex),
		KeyConditionExpression:    aws.String("record_type = :record_type"),
		ExpressionAttributeValues: exprValues,
	}
	if filter != "" {
		input.FilterExpression = aws.String(filter)
		input.ExpressionAttributeNames = attributeNames(filter, names)
	}
	return t.query(ctx, input)
}

func (t *Table) query(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, crerr.Wrap(err, "query page")
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// parallelScan runs a segmented scan with one pool worker per segment.
func (t *Table) parallelScan(ctx context.Context, filter string, names map[string]string, values map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	pool, err := ants.NewPool(t.scanSegments)
	if err != nil {
		return nil, crerr.Wrap(err, "create scan worker pool")
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		items    []map[string]types.AttributeValue
		firstErr error
		workers  sync.WaitGroup
	)
	for segment := 0; segment < t.scanSegments; segment++ {
		segment := segment
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			segmentItems, err := t.scanSegment(ctx, segment, filter, names, values)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			items = append(items, segmentItems...)
		}); err != nil {
			workers.Done()
			return nil, crerr.Wrap(err, "submit scan segment to worker pool")
		}
	}
	workers.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

func (t *Table) scanSegment(ctx context.Context, segment int, filter string, names map[string]string, values map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(t.name),
		Segment:                   aws.Int32(int32(segment)),
		TotalSegments:             aws.Int32(int32(t.scanSegments)),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  attributeNames(filter, names),
		ExpressionAttributeValues: values,
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, crerr.Wrapf(err, "scan segment=%d", segment)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
