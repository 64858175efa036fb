package ledger

import (
	"context"
	"encoding/json"
	"log/slog"

	"resume-ledger-backend/internal/domain"
)

// maxEventPage is the largest page the fullnode serves per query.
const maxEventPage = 50

// Scanner builds the record index from creation events. It does not retry;
// the client already did.
type Scanner struct {
	client       *Client
	defaultLimit int
	log          *slog.Logger
}

func NewScanner(client *Client, defaultLimit int, log *slog.Logger) *Scanner {
	if defaultLimit <= 0 {
		defaultLimit = maxEventPage
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{client: client, defaultLimit: defaultLimit, log: log}
}

// Scan reads the freshest pageLimit events of eventType. Records older than
// that window are not visible.
func (s *Scanner) Scan(ctx context.Context, eventType string, pageLimit int) (*domain.ResumeIndex, error) {
	if pageLimit <= 0 {
		pageLimit = s.defaultLimit
	}

	// Newest first, as served.
	var events []Event
	var cursor *EventID
	for len(events) < pageLimit {
		size := min(maxEventPage, pageLimit-len(events))
		page, err := s.client.QueryEvents(ctx, eventType, cursor, size, true)
		if err != nil {
			return nil, err
		}
		events = append(events, page.Data...)
		if !page.HasNextPage || page.NextCursor == nil || len(page.Data) == 0 {
			break
		}
		cursor = page.NextCursor
	}
	if len(events) > pageLimit {
		events = events[:pageLimit]
	}

	idx := domain.NewResumeIndex()
	skipped := 0
	// Apply oldest first so a re-emitted id ends up with its latest owner.
	for i := len(events) - 1; i >= 0; i-- {
		var ev domain.CreationEvent
		if err := json.Unmarshal(events[i].ParsedJSON, &ev); err != nil || ev.RecordID == "" || ev.Owner == "" {
			skipped++
			s.log.Warn("Skipping malformed creation event",
				"tx_digest", events[i].ID.TxDigest,
				"event_seq", events[i].ID.EventSeq,
				"error", err)
			continue
		}
		idx.Put(ev.RecordID, domain.NormalizeAddress(ev.Owner), int64(len(events)-1-i))
	}

	s.log.Debug("Scanned creation events",
		"event_type", eventType,
		"events", len(events),
		"records", idx.Len(),
		"skipped", skipped)
	return idx, nil
}
