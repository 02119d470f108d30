// Package stream provides DynamoDB Streams handlers that keep usage
// counters current as rows are written and removed.
package stream

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"

	"github.com/opsgrid/tenantstore/usage"
)

// UsageSync consumes table change events and reports the resulting row
// counts to a usage tracker. Counts are absolute: seed each resource with
// its current count before applying events.
type UsageSync struct {
	tracker   *usage.Tracker
	logger    *slog.Logger
	resources map[string]string // table name -> resource name

	mu     sync.Mutex
	counts map[string]int64 // resource name -> row count
}

// NewUsageSync creates a stream handler. resources maps table names to the
// resource names tracked by the tracker; events for unmapped tables are
// ignored.
func NewUsageSync(tracker *usage.Tracker, resources map[string]string, logger *slog.Logger) *UsageSync {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageSync{
		tracker:   tracker,
		logger:    logger,
		resources: resources,
		counts:    make(map[string]int64),
	}
}

// Seed sets the starting row count for a resource and reports it to the
// tracker.
func (h *UsageSync) Seed(resource string, count int64) {
	h.mu.Lock()
	h.counts[resource] = count
	h.mu.Unlock()
	h.tracker.SetUsage(resource, count)
}

// HandleEvent processes a batch of stream records. This function is
// designed to be used as an AWS Lambda handler.
func (h *UsageSync) HandleEvent(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		h.processRecord(record)
	}
	return nil
}

// processRecord applies a single stream record's delta.
func (h *UsageSync) processRecord(record events.DynamoDBEventRecord) {
	table := tableFromARN(record.EventSourceArn)
	resource, ok := h.resources[table]
	if !ok {
		return
	}

	var delta int64
	switch record.EventName {
	case "INSERT":
		delta = 1
	case "REMOVE":
		delta = -1
	default:
		return
	}

	h.mu.Lock()
	count := h.counts[resource] + delta
	if count < 0 {
		count = 0
	}
	h.counts[resource] = count
	h.mu.Unlock()

	h.tracker.SetUsage(resource, count)

	h.logger.Info("usage updated",
		"resource", resource,
		"table", table,
		"count", count,
	)
}

// tableFromARN extracts the table name from a stream event source ARN
// (arn:aws:dynamodb:region:account:table/NAME/stream/TIMESTAMP).
func tableFromARN(arn string) string {
	parts := strings.Split(arn, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
