package world

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"

	"github.com/worldforge-io/worldforge/internal/logging"
)

// DefaultChunkSize is the page size used when fetching the world's log.
const DefaultChunkSize = 500

// EventSource pages through the world's event log in chain order. Pages,
// when concatenated, preserve that order; the replay only starts once the
// full sequence is collected.
type EventSource interface {
	// FetchPage returns one page of raw events. token is empty for the first
	// page; next is empty when no pages remain.
	FetchPage(ctx context.Context, token string, chunkSize int) (events []RawEvent, next string, err error)
}

// CollectEvents drains an EventSource into a single ordered sequence.
func CollectEvents(ctx context.Context, src EventSource, chunkSize int) ([]RawEvent, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var all []RawEvent
	token := ""
	for {
		events, next, err := src.FetchPage(ctx, token, chunkSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch world events: %w", err)
		}
		all = append(all, events...)
		if next == "" {
			break
		}
		token = next
	}

	logging.Debug("collected world events", "count", len(all))
	return all, nil
}

// rpcEventSource fetches management events from a Starknet JSON-RPC node,
// filtered to the world address and the management event key set.
type rpcEventSource struct {
	provider *rpc.Provider
	address  felt.Felt
	keys     []felt.Felt
}

// NewRPCEventSource returns an EventSource backed by the node at url,
// filtered to the world at address.
func NewRPCEventSource(url string, address felt.Felt) (EventSource, error) {
	provider, err := rpc.NewProvider(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &rpcEventSource{
		provider: provider,
		address:  address,
		keys:     ManagementEventKeys(),
	}, nil
}

func (s *rpcEventSource) FetchPage(ctx context.Context, token string, chunkSize int) ([]RawEvent, string, error) {
	keys := make([]*felt.Felt, len(s.keys))
	for i := range s.keys {
		keys[i] = &s.keys[i]
	}

	chunk, err := s.provider.Events(ctx, rpc.EventsInput{
		EventFilter: rpc.EventFilter{
			FromBlock: rpc.WithBlockNumber(0),
			ToBlock:   rpc.WithBlockTag("latest"),
			Address:   &s.address,
			Keys:      [][]*felt.Felt{keys},
		},
		ResultPageRequest: rpc.ResultPageRequest{
			ChunkSize:         chunkSize,
			ContinuationToken: token,
		},
	})
	if err != nil {
		return nil, "", err
	}

	events := make([]RawEvent, 0, len(chunk.Events))
	for _, ev := range chunk.Events {
		raw := RawEvent{
			Keys:        make([]felt.Felt, len(ev.Keys)),
			Data:        make([]felt.Felt, len(ev.Data)),
			BlockNumber: ev.BlockNumber,
		}
		for i, k := range ev.Keys {
			raw.Keys[i] = *k
		}
		for i, d := range ev.Data {
			raw.Data[i] = *d
		}
		if ev.TransactionHash != nil {
			raw.TxHash = *ev.TransactionHash
		}
		events = append(events, raw)
	}

	return events, chunk.ContinuationToken, nil
}
