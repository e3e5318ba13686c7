package migrate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gridmove/cli/internal/grist"
)

// captureDest records every AddRecords call. failOn, when > 0, makes the
// n-th call fail.
type captureDest struct {
	batches [][]grist.RecordFields
	calls   int
	failOn  int
}

func (d *captureDest) CreateDoc(ctx context.Context, workspaceID int64, name string) (string, error) {
	return "doc1", nil
}

func (d *captureDest) AddTables(ctx context.Context, docID string, tables []grist.Table) ([]string, error) {
	ids := make([]string, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	return ids, nil
}

func (d *captureDest) AddRecords(ctx context.Context, docID, tableID string, records []grist.RecordFields) error {
	d.calls++
	if d.failOn > 0 && d.calls == d.failOn {
		return errors.New("insert rejected")
	}
	batch := make([]grist.RecordFields, len(records))
	copy(batch, records)
	d.batches = append(d.batches, batch)
	return nil
}

func makeRows(n int) []grist.RecordFields {
	rows := make([]grist.RecordFields, n)
	for i := range rows {
		rows[i] = grist.RecordFields{"seq": fmt.Sprintf("r%03d", i)}
	}
	return rows
}

func TestSendBatches(t *testing.T) {
	tests := []struct {
		name      string
		records   int
		batchSize int
		wantCalls int
		wantSizes []int
	}{
		{name: "empty input makes no calls", records: 0, batchSize: 100, wantCalls: 0},
		{name: "single partial batch", records: 7, batchSize: 100, wantCalls: 1, wantSizes: []int{7}},
		{name: "exact multiple", records: 200, batchSize: 100, wantCalls: 2, wantSizes: []int{100, 100}},
		{name: "trailing remainder", records: 205, batchSize: 100, wantCalls: 3, wantSizes: []int{100, 100, 5}},
		{name: "batch size one", records: 3, batchSize: 1, wantCalls: 3, wantSizes: []int{1, 1, 1}},
		{name: "zero batch size falls back to default", records: 150, batchSize: 0, wantCalls: 2, wantSizes: []int{100, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := &captureDest{}
			rows := makeRows(tt.records)
			if err := SendBatches(context.Background(), dest, "doc1", "T1", rows, tt.batchSize); err != nil {
				t.Fatalf("SendBatches() error = %v", err)
			}
			if dest.calls != tt.wantCalls {
				t.Fatalf("got %d calls, want %d", dest.calls, tt.wantCalls)
			}
			for i, want := range tt.wantSizes {
				if got := len(dest.batches[i]); got != want {
					t.Errorf("batch %d has %d records, want %d", i, got, want)
				}
			}
		})
	}
}

func TestSendBatchesPreservesOrder(t *testing.T) {
	dest := &captureDest{}
	rows := makeRows(250)
	if err := SendBatches(context.Background(), dest, "doc1", "T1", rows, 100); err != nil {
		t.Fatalf("SendBatches() error = %v", err)
	}
	seq := 0
	for _, batch := range dest.batches {
		for _, row := range batch {
			want := fmt.Sprintf("r%03d", seq)
			if row["seq"] != want {
				t.Fatalf("record %d out of order: got %v, want %s", seq, row["seq"], want)
			}
			seq++
		}
	}
	if seq != 250 {
		t.Errorf("transferred %d records, want 250", seq)
	}
}

func TestSendBatchesFailFast(t *testing.T) {
	dest := &captureDest{failOn: 2}
	rows := makeRows(350)
	err := SendBatches(context.Background(), dest, "doc1", "T1", rows, 100)
	if err == nil {
		t.Fatal("expected an error from the second batch")
	}
	if dest.calls != 2 {
		t.Errorf("made %d calls, want 2: later batches must not be sent after a failure", dest.calls)
	}
	if len(dest.batches) != 1 {
		t.Errorf("%d batches landed, want 1", len(dest.batches))
	}
}
