package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/onetodo/auth-api/internal/domain"
)

// ConfirmationRepo manages the one-shot two-factor confirmation markers.
// PK: user_id.
type ConfirmationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewConfirmationRepo(client *dynamodb.Client, tableName string) *ConfirmationRepo {
	return &ConfirmationRepo{client: client, tableName: tableName}
}

func (r *ConfirmationRepo) Put(ctx context.Context, c *domain.TwoFactorConfirmation) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ConfirmationRepo) Get(ctx context.Context, userID string) (*domain.TwoFactorConfirmation, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("confirmation not found: %w", domain.ErrNotFound)
	}
	var c domain.TwoFactorConfirmation
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConfirmationRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	return err
}
