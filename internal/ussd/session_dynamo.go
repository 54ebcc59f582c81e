package ussd

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// dynamoSession is the table layout. expiresAt is the table's TTL attribute.
type dynamoSession struct {
	SessionID   string  `dynamodbav:"sessionId"`
	PhoneNumber string  `dynamodbav:"phoneNumber"`
	ServiceCode string  `dynamodbav:"serviceCode,omitempty"`
	State       string  `dynamodbav:"state"`
	Language    string  `dynamodbav:"language,omitempty"`
	Scratch     Scratch `dynamodbav:"scratch"`
	CreatedAt   string  `dynamodbav:"createdAt"`
	UpdatedAt   string  `dynamodbav:"updatedAt"`
	ExpiresAt   int64   `dynamodbav:"expiresAt,omitempty"`
}

// DynamoSessionStore keeps sessions in a DynamoDB table keyed by sessionId.
type DynamoSessionStore struct {
	client    dynamoAPI
	tableName string
	now       func() time.Time
	logger    *logging.Logger
}

var _ SessionStore = (*DynamoSessionStore)(nil)

// NewDynamoSessionStore builds a store backed by the provided DynamoDB client.
func NewDynamoSessionStore(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoSessionStore {
	if client == nil {
		panic("ussd: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("ussd: session table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoSessionStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *DynamoSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, errSessionIDRequired
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"sessionId": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ussd: failed to fetch session: %w", err)
	}
	if out.Item == nil {
		return nil, ErrSessionNotFound
	}

	var rec dynamoSession
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("ussd: failed to decode session: %w", err)
	}
	// DynamoDB removes expired items lazily.
	if rec.ExpiresAt > 0 && rec.ExpiresAt <= s.now().Unix() {
		return nil, ErrSessionNotFound
	}

	sess := &Session{
		ID:          rec.SessionID,
		PhoneNumber: rec.PhoneNumber,
		ServiceCode: rec.ServiceCode,
		State:       ParseState(rec.State, rec.Language != ""),
		Language:    rec.Language,
		Scratch:     rec.Scratch,
		CreatedAt:   parseTimestamp(rec.CreatedAt),
		UpdatedAt:   parseTimestamp(rec.UpdatedAt),
	}
	return sess, nil
}

func (s *DynamoSessionStore) Put(ctx context.Context, sess *Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return errSessionIDRequired
	}
	rec := dynamoSession{
		SessionID:   sess.ID,
		PhoneNumber: sess.PhoneNumber,
		ServiceCode: sess.ServiceCode,
		State:       sess.State.String(),
		Language:    sess.Language,
		Scratch:     sess.Scratch,
		CreatedAt:   sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   sess.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if ttl > 0 {
		rec.ExpiresAt = s.now().Add(ttl).Unix()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("ussd: failed to marshal session: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("ussd: failed to persist session: %w", err)
	}
	return nil
}

func (s *DynamoSessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"sessionId": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("ussd: failed to delete session: %w", err)
	}
	s.logger.Debug("ussd session deleted", "session_id", id)
	return nil
}

func parseTimestamp(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
