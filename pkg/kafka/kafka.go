// Package kafka wraps the franz-go client with the small producer,
// consumer, and admin surface the application needs.
package kafka

import (
	"errors"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrClientClosed is returned by Poll when the underlying client is closed
var ErrClientClosed = errors.New("kafka client closed")

// Message is an outgoing record. Partition must be set by the caller;
// the producer uses manual partitioning so partition placement is never
// left to key hashing.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Headers   map[string]string
}

// Record is an incoming record
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time

	raw *kgo.Record
}

func fromKgoRecord(r *kgo.Record) *Record {
	return &Record{
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
		Key:       r.Key,
		Value:     r.Value,
		Timestamp: r.Timestamp,
		raw:       r,
	}
}
