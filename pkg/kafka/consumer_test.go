package kafka

import (
	"errors"
	"testing"

	"github.com/twmb/franz-go/pkg/kgo"
)

func TestSplitFetchesKeepsHealthyPartitions(t *testing.T) {
	brokerErr := errors.New("broker unreachable")
	fetches := kgo.Fetches{{
		Topics: []kgo.FetchTopic{{
			Topic: "ticket-orders-con_1",
			Partitions: []kgo.FetchPartition{
				{
					Partition: 0,
					Records: []*kgo.Record{
						{Topic: "ticket-orders-con_1", Partition: 0, Offset: 4, Value: []byte("a")},
						{Topic: "ticket-orders-con_1", Partition: 0, Offset: 5, Value: []byte("b")},
					},
				},
				{
					Partition: 1,
					Err:       brokerErr,
				},
			},
		}},
	}}

	records, fetchErrs := splitFetches(fetches)

	if len(records) != 2 {
		t.Fatalf("expected 2 records from the healthy partition, got %d", len(records))
	}
	if records[0].Offset != 4 || records[1].Offset != 5 {
		t.Errorf("records must keep offset order, got %d then %d", records[0].Offset, records[1].Offset)
	}
	if records[0].Partition != 0 {
		t.Errorf("expected partition 0, got %d", records[0].Partition)
	}

	if len(fetchErrs) != 1 {
		t.Fatalf("expected 1 fetch error, got %d", len(fetchErrs))
	}
	fe := fetchErrs[0]
	if fe.Topic != "ticket-orders-con_1" || fe.Partition != 1 || !errors.Is(fe.Err, brokerErr) {
		t.Errorf("unexpected fetch error: %+v", fe)
	}
}

func TestSplitFetchesAllHealthy(t *testing.T) {
	fetches := kgo.Fetches{{
		Topics: []kgo.FetchTopic{{
			Topic: "ticket-events-con_1",
			Partitions: []kgo.FetchPartition{{
				Partition: 0,
				Records:   []*kgo.Record{{Topic: "ticket-events-con_1", Offset: 0}},
			}},
		}},
	}}

	records, fetchErrs := splitFetches(fetches)
	if len(records) != 1 || len(fetchErrs) != 0 {
		t.Errorf("expected 1 record and no errors, got %d records, %d errors", len(records), len(fetchErrs))
	}
}
