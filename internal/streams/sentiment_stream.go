// Package streams refreshes company trends from the change stream of the
// sentiment table, either by polling DynamoDB Streams or as a Lambda handler.
package streams

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
	"github.com/spacesedan/earningsflow/internal/db"
	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/spacesedan/earningsflow/internal/utils"
)

const (
	STREAM_POLL_INTERVAL = 2 * time.Second
	DESCRIBE_EVERY       = 30 // poll rounds between shard discovery
)

type TrendRefresher interface {
	AnalyzeTrend(ctx context.Context, companyID string) (*models.TrendResult, []models.Alert, error)
}

type StreamsAPI interface {
	ListStreams(ctx context.Context, params *dynamodbstreams.ListStreamsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.ListStreamsOutput, error)
	DescribeStream(ctx context.Context, params *dynamodbstreams.DescribeStreamInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error)
	GetShardIterator(ctx context.Context, params *dynamodbstreams.GetShardIteratorInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, params *dynamodbstreams.GetRecordsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error)
}

// SentimentStream collects the companies whose sentiment rows changed and
// re-runs each company's trend once per flush, however many of its rows
// arrived in between.
type SentimentStream struct {
	refresher    TrendRefresher
	pending      *utils.BatchBuffer[string]
	pollInterval time.Duration
}

func NewSentimentStream(refresher TrendRefresher) *SentimentStream {
	return &SentimentStream{
		refresher:    refresher,
		pending:      utils.NewBatchBuffer[string](utils.BATCH_SIZE),
		pollInterval: STREAM_POLL_INTERVAL,
	}
}

func (s *SentimentStream) enqueue(r models.SentimentResult) {
	if r.CompanyID == "" {
		return
	}
	slog.Debug("[SentimentStream] Sentiment changed",
		slog.String("company_id", r.CompanyID),
		slog.String("period", r.Period))
	s.pending.Add(r.CompanyID)
}

// Flush refreshes the trend of every pending company. One company failing
// does not stop the others; all failures are returned joined.
func (s *SentimentStream) Flush(ctx context.Context) error {
	companies := s.pending.GetAndClear()
	slices.Sort(companies)
	companies = slices.Compact(companies)

	var errs []error
	for _, companyID := range companies {
		t, raised, err := s.refresher.AnalyzeTrend(ctx, companyID)
		if err != nil {
			errs = append(errs, fmt.Errorf("[SentimentStream] refresh %s: %w", companyID, err))
			continue
		}
		if t != nil {
			slog.Info("[SentimentStream] Trend refreshed",
				slog.String("company_id", companyID),
				slog.String("category", t.Category),
				slog.Int("alerts", len(raised)))
		}
	}
	return errors.Join(errs...)
}

// HandleEvent is the Lambda entry point. A failed refresh fails the whole
// batch so Lambda retries it.
func (s *SentimentStream) HandleEvent(ctx context.Context, event events.DynamoDBEvent) error {
	slog.Info("[SentimentStream] Received DynamoDB event", slog.Int("records", len(event.Records)))

	for _, record := range event.Records {
		if record.EventName != string(events.DynamoDBOperationTypeInsert) &&
			record.EventName != string(events.DynamoDBOperationTypeModify) {
			continue
		}

		var result models.SentimentResult
		if err := UnmarshalEventImage(record.Change.NewImage, &result); err != nil {
			slog.Error("[SentimentStream] Failed to unmarshal sentiment record",
				slog.String("event_id", record.EventID),
				slog.String("error", err.Error()))
			continue
		}
		s.enqueue(result)
	}

	return s.Flush(ctx)
}

// Poll follows the sentiment table's stream from its latest position until
// ctx is cancelled.
func (s *SentimentStream) Poll(ctx context.Context, client StreamsAPI) error {
	listed, err := client.ListStreams(ctx, &dynamodbstreams.ListStreamsInput{
		TableName: aws.String(db.SENTIMENT_RESULTS_TABLE_NAME),
	})
	if err != nil {
		return fmt.Errorf("[SentimentStream] list streams: %w", err)
	}
	if len(listed.Streams) == 0 {
		return fmt.Errorf("[SentimentStream] no stream enabled on %s", db.SENTIMENT_RESULTS_TABLE_NAME)
	}
	streamArn := listed.Streams[0].StreamArn

	shards := make(map[string]*shardCursor)
	if err := s.openShards(ctx, client, streamArn, shards, types.ShardIteratorTypeLatest); err != nil {
		return err
	}

	slog.Info("[SentimentStream] Polling stream",
		slog.String("stream_arn", aws.ToString(streamArn)),
		slog.Int("shards", len(shards)))

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for round := 1; ; round++ {
		select {
		case <-ctx.Done():
			if err := s.Flush(context.WithoutCancel(ctx)); err != nil {
				slog.Error("[SentimentStream] Final flush failed", slog.String("error", err.Error()))
			}
			return nil
		case <-ticker.C:
		}

		open := 0
		for shardID, cursor := range shards {
			if cursor.closed {
				continue
			}
			if cursor.iterator == nil && !s.resumeShard(ctx, client, streamArn, shardID, cursor) {
				open++
				continue
			}

			out, err := client.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{ShardIterator: cursor.iterator})
			if err != nil {
				slog.Error("[SentimentStream] Failed to get records",
					slog.String("shard_id", shardID),
					slog.String("error", err.Error()))
				cursor.iterator = nil
				open++
				continue
			}

			cursor.advance(s.handleRecords(out.Records))

			if out.NextShardIterator == nil {
				cursor.closed = true
			} else {
				cursor.iterator = out.NextShardIterator
				open++
			}
		}

		if err := s.Flush(ctx); err != nil {
			slog.Error("[SentimentStream] Trend refresh failed", slog.String("error", err.Error()))
		}

		if round%DESCRIBE_EVERY == 0 || open == 0 {
			if err := s.openShards(ctx, client, streamArn, shards, types.ShardIteratorTypeTrimHorizon); err != nil {
				slog.Warn("[SentimentStream] Shard discovery failed", slog.String("error", err.Error()))
			}
		}
	}
}

// shardCursor tracks one shard's read position. after is the sequence number
// of the last record handled; from is where the shard was first opened.
type shardCursor struct {
	iterator *string
	after    string
	from     types.ShardIteratorType
	closed   bool
}

func (c *shardCursor) advance(lastSequence string) {
	if lastSequence != "" {
		c.after = lastSequence
	}
}

// resumeShard replaces an expired or failed iterator. Reading resumes after
// the last handled record so nothing already refreshed is replayed.
func (s *SentimentStream) resumeShard(ctx context.Context, client StreamsAPI, streamArn *string, shardID string, cursor *shardCursor) bool {
	input := &dynamodbstreams.GetShardIteratorInput{
		StreamArn:         streamArn,
		ShardId:           aws.String(shardID),
		ShardIteratorType: cursor.from,
	}
	if cursor.after != "" {
		input.ShardIteratorType = types.ShardIteratorTypeAfterSequenceNumber
		input.SequenceNumber = aws.String(cursor.after)
	}

	out, err := client.GetShardIterator(ctx, input)
	if err != nil || out.ShardIterator == nil {
		slog.Warn("[SentimentStream] Failed to resume shard",
			slog.String("shard_id", shardID),
			slog.String("after", cursor.after),
			slog.Any("error", err))
		return false
	}
	cursor.iterator = out.ShardIterator
	return true
}

// handleRecords queues the companies in records and returns the sequence
// number of the last record seen.
func (s *SentimentStream) handleRecords(records []types.Record) string {
	var last string
	for _, record := range records {
		if record.Dynamodb == nil {
			continue
		}
		if seq := aws.ToString(record.Dynamodb.SequenceNumber); seq != "" {
			last = seq
		}
		if record.EventName != types.OperationTypeInsert && record.EventName != types.OperationTypeModify {
			continue
		}

		var result models.SentimentResult
		if err := UnmarshalStreamImage(record.Dynamodb.NewImage, &result); err != nil {
			slog.Error("[SentimentStream] Failed to unmarshal sentiment record",
				slog.String("error", err.Error()))
			continue
		}
		s.enqueue(result)
	}
	return last
}

// openShards starts a cursor for every shard not tracked yet.
func (s *SentimentStream) openShards(ctx context.Context, client StreamsAPI, streamArn *string, shards map[string]*shardCursor, from types.ShardIteratorType) error {
	described, err := client.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{StreamArn: streamArn})
	if err != nil {
		return fmt.Errorf("[SentimentStream] describe stream: %w", err)
	}

	for _, shard := range described.StreamDescription.Shards {
		shardID := aws.ToString(shard.ShardId)
		if _, ok := shards[shardID]; ok {
			continue
		}

		out, err := client.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
			StreamArn:         streamArn,
			ShardId:           shard.ShardId,
			ShardIteratorType: from,
		})
		if err != nil {
			slog.Error("[SentimentStream] Failed to get shard iterator",
				slog.String("shard_id", shardID),
				slog.String("error", err.Error()))
			continue
		}

		shards[shardID] = &shardCursor{iterator: out.ShardIterator, from: from, closed: out.ShardIterator == nil}
	}
	return nil
}
