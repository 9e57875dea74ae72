package dynamo

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
)

type dispatchItem struct {
	DispatchID   string    `dynamodbav:"dispatch_id"`
	Kind         string    `dynamodbav:"kind"`
	Path         string    `dynamodbav:"path"`
	RequestedBy  string    `dynamodbav:"requested_by"`
	Participants int       `dynamodbav:"participants"`
	Status       string    `dynamodbav:"status"`
	Payload      string    `dynamodbav:"payload"`
	ResponseCode int       `dynamodbav:"response_code"`
	LastError    string    `dynamodbav:"last_error"`
	OccurredAt   time.Time `dynamodbav:"occurred_at"`
	TraceID      string    `dynamodbav:"trace_id"`
	SpanID       string    `dynamodbav:"span_id"`
}

type DispatchRepository struct {
	table *Table
}

func NewDispatchRepository(table *Table) *DispatchRepository {
	return &DispatchRepository{table: table}
}

// UpsertEvent moves a dispatch record to the event's status. The payload and
// requester written by the first event are kept.
func (r *DispatchRepository) UpsertEvent(ctx context.Context, event dispatch.Event) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return crerr.New("dispatch id is required")
	}

	payload := strings.TrimSpace(string(event.Payload))
	if payload == "" {
		payload = "{}"
	}
	lastError := event.ErrorMessage
	if event.Status != dispatch.StatusFailed {
		lastError = ""
	}

	_, err := r.table.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table.name),
		Key:       singletonKey(dispatchKey(dispatchID)),
		UpdateExpression: aws.String(`SET record_type = :record_type, dispatch_id = :dispatch_id, #kind = :kind, #path = :path,
requested_by = if_not_exists(requested_by, :requested_by),
participants = :participants,
payload = if_not_exists(payload, :payload),
#status = :status, response_code = :response_code, last_error = :last_error,
occurred_at = :occurred_at, trace_id = :trace_id, span_id = :span_id`),
		ExpressionAttributeNames: map[string]string{
			"#kind":   "kind",
			"#path":   "path",
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":record_type":   stringValue(recordDispatch),
			":dispatch_id":   stringValue(dispatchID),
			":kind":          stringValue(string(event.Kind)),
			":path":          stringValue(event.Path),
			":requested_by":  stringValue(event.RequestedBy),
			":participants":  &types.AttributeValueMemberN{Value: strconv.Itoa(event.Participants)},
			":payload":       stringValue(payload),
			":status":        stringValue(string(event.Status)),
			":response_code": &types.AttributeValueMemberN{Value: strconv.Itoa(event.ResponseCode)},
			":last_error":    stringValue(lastError),
			":occurred_at":   timeValue(event.OccurredAt),
			":trace_id":      stringValue(event.TraceID),
			":span_id":       stringValue(event.SpanID),
		},
	})
	if err != nil {
		return crerr.Wrapf(err, "upsert dispatch dispatch_id=%s status=%s", dispatchID, event.Status)
	}
	return nil
}

func (r *DispatchRepository) ListRecent(ctx context.Context, limit int) ([]dispatch.Event, error) {
	raw, err := r.table.queryRecords(ctx, recordDispatch, "", nil, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "query dispatches")
	}

	var items []dispatchItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, crerr.Wrap(err, "unmarshal dispatches")
	}

	out := make([]dispatch.Event, 0, len(items))
	for _, item := range items {
		out = append(out, dispatch.Event{
			DispatchID:   item.DispatchID,
			Kind:         dispatch.Kind(item.Kind),
			Path:         item.Path,
			RequestedBy:  item.RequestedBy,
			Participants: item.Participants,
			Status:       dispatch.Status(item.Status),
			Payload:      []byte(item.Payload),
			ResponseCode: item.ResponseCode,
			ErrorMessage: item.LastError,
			OccurredAt:   item.OccurredAt,
			TraceID:      item.TraceID,
			SpanID:       item.SpanID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
