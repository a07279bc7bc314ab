// Package queue moves background jobs through a redis stream consumed
// by a worker group.
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrPermanent marks job failures that can never succeed on retry.
// The consumer acknowledges such jobs instead of leaving them pending.
var ErrPermanent = errors.New("permanent job failure")

const (
	JobTypeThumbnail = "thumbnail"
	JobTypeReconcile = "reconcile"
)

type Job struct {
	Type    string
	FileID  string
	OwnerID string
}

// JobFromMessage extracts a job from raw stream entry values. Missing
// fields come back empty; the processor decides what is fatal.
func JobFromMessage(msg redis.XMessage) Job {
	return Job{
		Type:    stringValue(msg.Values, "type"),
		FileID:  stringValue(msg.Values, "fileId"),
		OwnerID: stringValue(msg.Values, "ownerId"),
	}
}

func stringValue(values map[string]interface{}, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}

type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

// EnqueueThumbnail publishes one thumbnail job. Callers must only
// invoke this after the referenced file record is committed.
func (p *Producer) EnqueueThumbnail(ctx context.Context, fileID string, ownerID string) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":    JobTypeThumbnail,
			"fileId":  fileID,
			"ownerId": ownerID,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("enqueue thumbnail: %w", err)
	}
	return nil
}

// EnqueueReconcile publishes a sweep job that re-enqueues thumbnail
// work for image records with missing derivatives.
func (p *Producer) EnqueueReconcile(ctx context.Context) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type": JobTypeReconcile,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("enqueue reconcile: %w", err)
	}
	return nil
}
