package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/payment-reminder-api/internal/domain"
)

// OTPRepo manages one-time email verification codes.
// PK: email. A PutItem on the same email overwrites the prior record, so the
// single-live-code-per-email invariant holds without a delete-then-insert.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp record not found: %w", domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *OTPRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	return err
}

// DeleteExpired removes all records past their expiry and returns the count.
// DynamoDB TTL eventually purges these anyway, but the sweep keeps the table
// tight between TTL passes and gives the scheduler something observable.
func (r *OTPRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(r.tableName),
		FilterExpression:     aws.String("expires_at < :now"),
		ProjectionExpression: aws.String("email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	}
	removed := 0
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return removed, err
		}
		for _, item := range out.Items {
			emailAttr, ok := item["email"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			if err := r.Delete(ctx, emailAttr.Value); err != nil {
				slog.Warn("failed to delete expired otp record", "email", emailAttr.Value, "err", err)
				continue
			}
			removed++
		}
		if out.LastEvaluatedKey == nil {
			return removed, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
