package migrate

import (
	"context"

	"gridmove/cli/internal/grist"
)

// DefaultBatchSize bounds how many records go into one insert request.
// Matches the page size both services use for bulk record operations.
const DefaultBatchSize = 100

// SendBatches forwards records to the destination's bulk insert in
// consecutive chunks of at most batchSize, awaiting each call before issuing
// the next. Record order is preserved across chunks. Empty input performs no
// remote calls. The first failing chunk aborts the remaining ones; chunks
// already sent stay in place.
func SendBatches(ctx context.Context, dest Destination, docID, tableID string, records []grist.RecordFields, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := dest.AddRecords(ctx, docID, tableID, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}
