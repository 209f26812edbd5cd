package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/brightside-news/brightside/internal/models"
)

const ARTICLES_TABLE_NAME = "PositiveArticles"

// DynamoStore keeps curated articles in a table keyed by url, so the dedup
// lookup is a single GetItem and uniqueness is enforced by a conditional put.
// Find scans the table and evaluates the query in process; the curated set
// stays small enough for that to be the simpler tradeoff.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoStore(client *dynamodb.Client) *DynamoStore {
	return &DynamoStore{client: client, table: ARTICLES_TABLE_NAME}
}

func (s *DynamoStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(s.table),
		Key:                  map[string]types.AttributeValue{"url": &types.AttributeValueMemberS{Value: url}},
		ProjectionExpression: aws.String("#u"),
		ExpressionAttributeNames: map[string]string{
			"#u": "url",
		},
	})
	if err != nil {
		return false, fmt.Errorf("[DynamoStore] get item by url: %w", err)
	}
	return len(out.Item) > 0, nil
}

func (s *DynamoStore) Insert(ctx context.Context, article models.Article) (models.Article, error) {
	article.ID = uuid.NewString()

	item, err := attributevalue.MarshalMap(article)
	if err != nil {
		return models.Article{}, fmt.Errorf("[DynamoStore] marshal article: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#u)"),
		ExpressionAttributeNames: map[string]string{
			"#u": "url",
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return models.Article{}, ErrDuplicateURL
		}
		return models.Article{}, fmt.Errorf("[DynamoStore] put article: %w", err)
	}

	return article, nil
}

func (s *DynamoStore) Find(ctx context.Context, q Query) ([]models.Article, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	var matched []models.Article
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoStore] scan articles: %w", err)
		}

		var page []models.Article
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("[DynamoStore] unmarshal article page: %w", err)
		}

		for _, a := range page {
			if q.Filter.Matches(a) {
				matched = append(matched, a)
			}
		}
	}

	SortArticles(matched, q.SortBy, q.SortOrder)
	result := Paginate(matched, q.Skip, q.Limit)

	slog.Debug("[DynamoStore] Find complete",
		slog.Int("matched", len(matched)),
		slog.Int("returned", len(result)))
	return result, nil
}
