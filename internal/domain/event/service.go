package event

import "context"

type Service interface {
	// Ingest authenticates the batch by device API key and writes each item,
	// deduplicating by (device, raw_id) and gating MINE_IN / TOOL_TAKE on a
	// recent ESMO_OK.
	Ingest(ctx context.Context, apiKey string, req IngestRequest) ([]IngestResult, error)

	List(ctx context.Context, filter Filter) ([]Response, error)
	ListPaged(ctx context.Context, filter Filter) ([]Response, int64, error)
}
