package dynamo

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/awap-platform/internal/domain/permission"
)

type configItem struct {
	BracketSwitching  bool      `dynamodbav:"bracket_switching"`
	TeamModifications bool      `dynamodbav:"team_modifications"`
	ScrimmageRequests bool      `dynamodbav:"scrimmage_requests"`
	CodeSubmissions   bool      `dynamodbav:"code_submissions"`
	UpdatedAt         time.Time `dynamodbav:"updated_at"`
}

type PermissionRepository struct {
	table *Table
}

func NewPermissionRepository(table *Table) *PermissionRepository {
	return &PermissionRepository{table: table}
}

func (r *PermissionRepository) Get(ctx context.Context) (permission.Flags, bool, error) {
	var item configItem
	found, err := r.table.getItem(ctx, configProfileKey, configProfileKey, &item)
	if err != nil || !found {
		return permission.Flags{}, false, err
	}
	return permission.Flags{
		BracketSwitching:  item.BracketSwitching,
		TeamModifications: item.TeamModifications,
		ScrimmageRequests: item.ScrimmageRequests,
		CodeSubmissions:   item.CodeSubmissions,
		UpdatedAt:         item.UpdatedAt,
	}, true, nil
}

// Update sets the named flags in one UpdateItem. Flags not named keep their
// stored value, or the default when the record is new.
func (r *PermissionRepository) Update(ctx context.Context, updates map[permission.Flag]bool, at time.Time) error {
	defaults := permission.DefaultFlags()
	sets := []string{"record_type = :record_type", "updated_at = :at"}
	names := map[string]string{}
	values := map[string]types.AttributeValue{
		":record_type": stringValue(recordConfig),
		":at":          timeValue(at),
	}
	for _, flag := range permission.AllFlags() {
		name := "#" + string(flag)
		names[name] = string(flag)
		if enabled, ok := updates[flag]; ok {
			sets = append(sets, name+" = :"+string(flag))
			values[":"+string(flag)] = &types.AttributeValueMemberBOOL{Value: enabled}
			continue
		}
		sets = append(sets, name+" = if_not_exists("+name+", :default_"+string(flag)+")")
		values[":default_"+string(flag)] = &types.AttributeValueMemberBOOL{Value: defaults.Enabled(flag)}
	}

	_, err := r.table.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.name),
		Key:                       singletonKey(configProfileKey),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return crerr.Wrap(err, "update permission config")
	}
	return nil
}
