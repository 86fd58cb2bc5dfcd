package db

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	puts            []*dynamodb.PutItemInput
	queries         []*dynamodb.QueryInput
	batches         []*dynamodb.BatchWriteItemInput
	transacts       []*dynamodb.TransactWriteItemsInput
	queryItems      []map[string]types.AttributeValue
	getItem         map[string]types.AttributeValue
	unprocessedOnce bool
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	return &dynamodb.QueryOutput{Items: f.queryItems}, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batches = append(f.batches, in)
	if f.unprocessedOnce {
		f.unprocessedOnce = false
		return &dynamodb.BatchWriteItemOutput{UnprocessedItems: in.RequestItems}, nil
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeDynamo) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transacts = append(f.transacts, in)
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func TestDynamoSaveSentiment(t *testing.T) {
	fake := &fakeDynamo{}
	require.NoError(t, NewDynamoStore(fake).SaveSentiment(context.Background(), result("ACME", 2025, 2, 0.4)))

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, SENTIMENT_RESULTS_TABLE_NAME, aws.ToString(put.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "ACME"}, put.Item["company_id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2025#Q2"}, put.Item["period"])
}

func TestDynamoSaveSentimentWithAlerts(t *testing.T) {
	fake := &fakeDynamo{}
	err := NewDynamoStore(fake).SaveSentimentWithAlerts(context.Background(), result("ACME", 2025, 2, 0.62), []models.Alert{
		alert("sig", "ACME", 0),
	})
	require.NoError(t, err)

	assert.Empty(t, fake.puts)
	require.Len(t, fake.transacts, 1)
	items := fake.transacts[0].TransactItems
	require.Len(t, items, 2)
	assert.Equal(t, SENTIMENT_RESULTS_TABLE_NAME, aws.ToString(items[0].Put.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2025#Q2"}, items[0].Put.Item["period"])
	assert.Equal(t, ALERTS_TABLE_NAME, aws.ToString(items[1].Put.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "sig"}, items[1].Put.Item["id"])
}

func TestDynamoHistory(t *testing.T) {
	var items []map[string]types.AttributeValue
	for _, r := range []*models.SentimentResult{result("ACME", 2025, 2, 0.3), result("ACME", 2025, 1, 0.2)} {
		item, err := attributevalue.MarshalMap(r)
		require.NoError(t, err)
		items = append(items, item)
	}
	fake := &fakeDynamo{queryItems: items}

	history, err := NewDynamoStore(fake).History(context.Background(), "ACME", 2)
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, 0.3, history[0].OverallSentiment)
	assert.Equal(t, "ABC-123", history[1].ProductMentions[0].Name)

	require.Len(t, fake.queries, 1)
	assert.False(t, aws.ToBool(fake.queries[0].ScanIndexForward))
	assert.Equal(t, int32(2), aws.ToInt32(fake.queries[0].Limit))
}

func TestDynamoSaveTrendWithAlerts(t *testing.T) {
	fake := &fakeDynamo{}
	err := NewDynamoStore(fake).SaveTrendWithAlerts(context.Background(), trendFor("t1", "ACME", 0), []models.Alert{
		alert("a1", "ACME", 0),
		alert("a2", "ACME", time.Second),
	})
	require.NoError(t, err)

	require.Len(t, fake.transacts, 1)
	items := fake.transacts[0].TransactItems
	require.Len(t, items, 3)
	assert.Equal(t, TREND_RESULTS_TABLE_NAME, aws.ToString(items[0].Put.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2025-06-01T12:00:00.000000000Z#t1"}, items[0].Put.Item["analysis_key"])
	assert.Equal(t, ALERTS_TABLE_NAME, aws.ToString(items[2].Put.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "a2"}, items[2].Put.Item["id"])
}

func TestDynamoSaveAlertsRetriesUnprocessed(t *testing.T) {
	fake := &fakeDynamo{unprocessedOnce: true}
	alerts := make([]models.Alert, 0, 30)
	for i := range 30 {
		alerts = append(alerts, alert(string(rune('a'+i)), "ACME", time.Duration(i)*time.Second))
	}

	require.NoError(t, NewDynamoStore(fake).SaveAlerts(context.Background(), alerts))

	// first batch, its retry, then the second batch of 5
	require.Len(t, fake.batches, 3)
	assert.Len(t, fake.batches[0].RequestItems[ALERTS_TABLE_NAME], 25)
	assert.Len(t, fake.batches[2].RequestItems[ALERTS_TABLE_NAME], 5)
}

func TestDynamoLatestTrendNotFound(t *testing.T) {
	_, err := NewDynamoStore(&fakeDynamo{}).LatestTrend(context.Background(), "ACME")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := NewDynamoStore(&fakeDynamo{}).HasTranscript(context.Background(), "ACME", 2025, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
