package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/earningsflow/internal/models"
)

const (
	SENTIMENT_RESULTS_TABLE_NAME = "TranscriptSentiment"
	TREND_RESULTS_TABLE_NAME     = "TranscriptTrends"
	ALERTS_TABLE_NAME            = "TranscriptAlerts"

	maxBatchSize        = 25
	maxTransactItems    = 100
	maxBatchRetries     = 3
	initialBatchBackoff = 500 * time.Millisecond

	sortKeyLayout = "2006-01-02T15:04:05.000000000Z"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore keys every table by company_id. Sentiment rows sort by period
// ("2025#Q2"), trends and alerts by "<UTC timestamp>#<id>".
type DynamoStore struct {
	client DynamoAPI
}

func NewDynamoStore(client DynamoAPI) *DynamoStore {
	return &DynamoStore{client: client}
}

func (d *DynamoStore) SaveSentiment(ctx context.Context, r *models.SentimentResult) error {
	return d.SaveSentimentWithAlerts(ctx, r, nil)
}

// SaveSentimentWithAlerts puts the result alone with PutItem, or together
// with its alerts in one TransactWriteItems call.
func (d *DynamoStore) SaveSentimentWithAlerts(ctx context.Context, r *models.SentimentResult, alerts []models.Alert) error {
	if err := validateSentimentWithAlerts(r, alerts); err != nil {
		return err
	}
	item, err := sentimentItem(r)
	if err != nil {
		return err
	}

	if len(alerts) == 0 {
		if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(SENTIMENT_RESULTS_TABLE_NAME),
			Item:      item,
		}); err != nil {
			return fmt.Errorf("[DynamoDB] Failed to put sentiment result: %w", err)
		}
	} else {
		if len(alerts)+1 > maxTransactItems {
			return fmt.Errorf("[DynamoDB] %d alerts exceed a single transaction", len(alerts))
		}
		items := make([]types.TransactWriteItem, 0, len(alerts)+1)
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(SENTIMENT_RESULTS_TABLE_NAME), Item: item},
		})
		for _, a := range alerts {
			alertItem, err := alertItem(a)
			if err != nil {
				return err
			}
			items = append(items, types.TransactWriteItem{
				Put: &types.Put{TableName: aws.String(ALERTS_TABLE_NAME), Item: alertItem},
			})
		}
		if _, err := d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
			return fmt.Errorf("[DynamoDB] Failed to write sentiment transaction: %w", err)
		}
	}

	slog.Debug("[DynamoDB] Stored sentiment result",
		slog.String("company_id", r.CompanyID),
		slog.String("period", r.Period),
		slog.Int("alerts", len(alerts)))
	return nil
}

func (d *DynamoStore) History(ctx context.Context, companyID string, limit int) ([]models.SentimentResult, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(SENTIMENT_RESULTS_TABLE_NAME),
		KeyConditionExpression: aws.String("company_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: companyID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	var history []models.SentimentResult
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Query for sentiment history failed: %w", err)
		}

		var page []models.SentimentResult
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal sentiment page: %w", err)
		}
		history = append(history, page...)

		if limit > 0 && len(history) >= limit {
			return history[:limit], nil
		}
	}
	return history, nil
}

func (d *DynamoStore) HasTranscript(ctx context.Context, companyID string, fiscalYear, fiscalQuarter int) (bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(SENTIMENT_RESULTS_TABLE_NAME),
		Key: map[string]types.AttributeValue{
			"company_id": &types.AttributeValueMemberS{Value: companyID},
			"period":     &types.AttributeValueMemberS{Value: models.PeriodKey(fiscalYear, fiscalQuarter)},
		},
		ProjectionExpression: aws.String("company_id"),
	})
	if err != nil {
		return false, fmt.Errorf("[DynamoDB] Failed to look up transcript: %w", err)
	}
	return len(out.Item) > 0, nil
}

// SaveTrendWithAlerts writes the trend and its alerts in one
// TransactWriteItems call.
func (d *DynamoStore) SaveTrendWithAlerts(ctx context.Context, trend *models.TrendResult, alerts []models.Alert) error {
	if err := validateTrend(trend, alerts); err != nil {
		return err
	}
	if len(alerts)+1 > maxTransactItems {
		return fmt.Errorf("[DynamoDB] %d alerts exceed a single transaction", len(alerts))
	}

	trendItem, err := trendItem(trend)
	if err != nil {
		return err
	}

	items := make([]types.TransactWriteItem, 0, len(alerts)+1)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{TableName: aws.String(TREND_RESULTS_TABLE_NAME), Item: trendItem},
	})
	for _, a := range alerts {
		item, err := alertItem(a)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(ALERTS_TABLE_NAME), Item: item},
		})
	}

	if _, err := d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("[DynamoDB] Failed to write trend transaction: %w", err)
	}

	slog.Info("[DynamoDB] Stored trend with alerts",
		slog.String("company_id", trend.CompanyID),
		slog.String("category", trend.Category),
		slog.Int("alerts", len(alerts)))
	return nil
}

// SaveAlerts batch-writes alerts that are not tied to a trend, retrying
// unprocessed items with backoff.
func (d *DynamoStore) SaveAlerts(ctx context.Context, alerts []models.Alert) error {
	if err := validateAlerts(alerts); err != nil {
		return err
	}

	for i := 0; i < len(alerts); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := min(i+maxBatchSize, len(alerts))
		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, a := range alerts[i:end] {
			item, err := alertItem(a)
			if err != nil {
				return err
			}
			writeRequests = append(writeRequests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{ALERTS_TABLE_NAME: writeRequests},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to batch write alerts: %w", err)
		}

		retryCount := 0
		backoff := initialBatchBackoff
		for len(out.UnprocessedItems) > 0 && retryCount < maxBatchRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2

			slog.Warn("[DynamoDB] Retrying unprocessed alerts...",
				slog.Int("attempt", retryCount+1),
				slog.Int("remaining", len(out.UnprocessedItems[ALERTS_TABLE_NAME])))

			out, err = d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Retry error: %w", err)
			}
			retryCount++
		}

		if remaining := len(out.UnprocessedItems[ALERTS_TABLE_NAME]); remaining > 0 {
			return fmt.Errorf("[DynamoDB] %d alerts were not written after retries", remaining)
		}
	}
	return nil
}

func (d *DynamoStore) LatestTrend(ctx context.Context, companyID string) (*models.TrendResult, error) {
	out, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(TREND_RESULTS_TABLE_NAME),
		KeyConditionExpression: aws.String("company_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: companyID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Query for latest trend failed: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	var trend models.TrendResult
	if err := attributevalue.UnmarshalMap(out.Items[0], &trend); err != nil {
		return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal trend: %w", err)
	}
	return &trend, nil
}

func (d *DynamoStore) Alerts(ctx context.Context, companyID string) ([]models.Alert, error) {
	paginator := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
		TableName:              aws.String(ALERTS_TABLE_NAME),
		KeyConditionExpression: aws.String("company_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: companyID},
		},
	})

	var alerts []models.Alert
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Query for alerts failed: %w", err)
		}
		var page []models.Alert
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal alerts page: %w", err)
		}
		alerts = append(alerts, page...)
	}
	return alerts, nil
}

func (d *DynamoStore) Close() error { return nil }

func sentimentItem(r *models.SentimentResult) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to marshal sentiment result: %w", err)
	}
	item["period"] = &types.AttributeValueMemberS{Value: models.PeriodKey(r.FiscalYear, r.FiscalQuarter)}
	return item, nil
}

func trendItem(trend *models.TrendResult) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(trend)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to marshal trend: %w", err)
	}
	item["analysis_key"] = &types.AttributeValueMemberS{Value: sortKey(trend.AnalysisDate, trend.ID)}
	return item, nil
}

func alertItem(a models.Alert) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to marshal alert: %w", err)
	}
	item["alert_key"] = &types.AttributeValueMemberS{Value: sortKey(a.CreatedAt, a.ID)}
	return item, nil
}

func sortKey(t time.Time, id string) string {
	return t.UTC().Format(sortKeyLayout) + "#" + id
}

var _ Store = (*DynamoStore)(nil)
