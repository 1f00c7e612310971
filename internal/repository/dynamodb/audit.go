// Package dynamodb implements the audit log's secondary store: a
// PK=RESOURCE#<resource> / SK=timestamp#id table mirroring every row the
// Postgres primary store accepts, for coarse-key high-volume queries (by
// resource, over a time range) without a relational index. Items are
// marshaled with attributevalue.MarshalMap for whole-item puts and queries.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ignite/seo-noc/internal/domain"
)

// auditItem is the DynamoDB item shape: PK groups rows by resource so a
// single-resource audit trail is one Query, SK sorts by arrival within that
// resource.
type auditItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	ID         string `dynamodbav:"id"`
	EventType  string `dynamodbav:"event_type"`
	ActorEmail string `dynamodbav:"actor_email"`
	Resource   string `dynamodbav:"resource"`
	Details    string `dynamodbav:"details"`
	Severity   string `dynamodbav:"severity"`
	Success    bool   `dynamodbav:"success"`
	Timestamp  string `dynamodbav:"timestamp"`
}

func toItem(row *domain.AuditLog) auditItem {
	return auditItem{
		PK:         "RESOURCE#" + row.Resource,
		SK:         row.Timestamp.UTC().Format(time.RFC3339Nano) + "#" + row.ID,
		ID:         row.ID,
		EventType:  row.EventType,
		ActorEmail: row.ActorEmail,
		Resource:   row.Resource,
		Details:    row.Details,
		Severity:   string(row.Severity),
		Success:    row.Success,
		Timestamp:  row.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// AuditMirror implements audit.Mirror against DynamoDB.
type AuditMirror struct {
	client    *dynamodb.Client
	tableName string
}

// NewAuditMirror builds a DynamoDB-backed audit log mirror.
func NewAuditMirror(client *dynamodb.Client, tableName string) *AuditMirror {
	return &AuditMirror{client: client, tableName: tableName}
}

// Insert satisfies audit.Mirror.
func (m *AuditMirror) Insert(ctx context.Context, row *domain.AuditLog) error {
	av, err := attributevalue.MarshalMap(toItem(row))
	if err != nil {
		return fmt.Errorf("marshal audit item: %w", err)
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put audit item: %w", err)
	}
	return nil
}

// ListByResource is the coarse-key query this table is shaped for: every
// audit row for one resource, newest first, within an optional time range.
func (m *AuditMirror) ListByResource(ctx context.Context, resource string, since time.Time) ([]domain.AuditLog, error) {
	result, err := m.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(m.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND SK >= :since"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":    &types.AttributeValueMemberS{Value: "RESOURCE#" + resource},
			":since": &types.AttributeValueMemberS{Value: since.UTC().Format(time.RFC3339Nano)},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query audit items: %w", err)
	}

	out := make([]domain.AuditLog, 0, len(result.Items))
	for _, rawItem := range result.Items {
		var item auditItem
		if err := attributevalue.UnmarshalMap(rawItem, &item); err != nil {
			return nil, fmt.Errorf("unmarshal audit item: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, item.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse audit item timestamp: %w", err)
		}
		out = append(out, domain.AuditLog{
			ID:         item.ID,
			EventType:  item.EventType,
			ActorEmail: item.ActorEmail,
			Resource:   item.Resource,
			Details:    item.Details,
			Severity:   domain.AuditSeverity(item.Severity),
			Success:    item.Success,
			Timestamp:  ts,
		})
	}
	return out, nil
}
