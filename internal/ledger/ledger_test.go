package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resume-ledger-backend/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventType = "0xpkg::resume::ResumeCreated"

// fakeNode is a minimal Sui fullnode serving canned events and objects.
type fakeNode struct {
	mu          sync.Mutex
	events      []ledger.Event // newest first
	objects     map[string]json.RawMessage
	failObjects map[string]bool
	owned       [][]json.RawMessage // pages
	statuses    []int               // forced HTTP statuses, consumed in order
	delay       time.Duration

	calls       atomic.Int32
	limits      []int
	inflight    atomic.Int32
	maxInflight atomic.Int32
}

type request struct {
	ID     uint64            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.calls.Add(1)
	cur := n.inflight.Add(1)
	defer n.inflight.Add(-1)
	for {
		prev := n.maxInflight.Load()
		if cur <= prev || n.maxInflight.CompareAndSwap(prev, cur) {
			break
		}
	}
	if n.delay > 0 {
		time.Sleep(n.delay)
	}

	n.mu.Lock()
	if len(n.statuses) > 0 {
		status := n.statuses[0]
		n.statuses = n.statuses[1:]
		n.mu.Unlock()
		w.WriteHeader(status)
		return
	}
	n.mu.Unlock()

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "suix_queryEvents":
		n.queryEvents(w, req)
	case "sui_getObject":
		var id string
		_ = json.Unmarshal(req.Params[0], &id)
		if n.failObjects[id] {
			writeJSON(w, map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": map[string]any{"code": -32000, "message": "boom"}})
			return
		}
		obj, ok := n.objects[id]
		if !ok {
			obj = json.RawMessage(fmt.Sprintf(`{"error":{"code":"notExists","object_id":%q}}`, id))
		}
		writeResult(w, req.ID, obj)
	case "sui_getLatestCheckpointSequenceNumber":
		writeResult(w, req.ID, "123456")
	case "suix_getOwnedObjects":
		var cursor *string
		_ = json.Unmarshal(req.Params[2], &cursor)
		page := 0
		if cursor != nil {
			page, _ = strconv.Atoi(*cursor)
		}
		var next any
		if page+1 < len(n.owned) {
			next = strconv.Itoa(page + 1)
		}
		data := []json.RawMessage{}
		if page < len(n.owned) {
			data = n.owned[page]
		}
		writeResult(w, req.ID, map[string]any{"data": data, "nextCursor": next, "hasNextPage": next != nil})
	default:
		writeJSON(w, map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": map[string]any{"code": -32601, "message": "method not found"}})
	}
}

func (n *fakeNode) queryEvents(w http.ResponseWriter, req request) {
	var cursor *ledger.EventID
	var limit int
	_ = json.Unmarshal(req.Params[1], &cursor)
	_ = json.Unmarshal(req.Params[2], &limit)

	n.mu.Lock()
	n.limits = append(n.limits, limit)
	n.mu.Unlock()

	start := 0
	if cursor != nil {
		start, _ = strconv.Atoi(cursor.EventSeq)
	}
	end := min(start+limit, len(n.events))
	page := ledger.EventPage{Data: n.events[start:end]}
	if end < len(n.events) {
		page.HasNextPage = true
		page.NextCursor = &ledger.EventID{TxDigest: "tx", EventSeq: strconv.Itoa(end)}
	}
	writeResult(w, req.ID, page)
}

func writeResult(w http.ResponseWriter, id uint64, result any) {
	writeJSON(w, map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func creationEvent(id, owner string) ledger.Event {
	payload, _ := json.Marshal(map[string]string{
		"resume": id, "user": owner, "name": "n", "date": "d",
		"education": "e", "mail": "m", "number": "1",
	})
	return ledger.Event{Type: eventType, ParsedJSON: payload}
}

func objectJSON(id string, fields map[string]any) json.RawMessage {
	raw, _ := json.Marshal(map[string]any{
		"data": map[string]any{
			"objectId": id,
			"version":  "7",
			"type":     "0xpkg::resume::Resume",
			"content": map[string]any{
				"dataType": "moveObject",
				"type":     "0xpkg::resume::Resume",
				"fields":   fields,
			},
		},
	})
	return raw
}

func newClient(t *testing.T, node *fakeNode, retries int) *ledger.Client {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)
	return ledger.NewClient(ledger.ClientConfig{
		URL:        srv.URL,
		Timeout:    5 * time.Second,
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
	})
}

func TestScannerPagesAndLastOccurrenceWins(t *testing.T) {
	node := &fakeNode{}
	// Event i (newest first) names rec-(i%30): every record appears twice.
	for i := 0; i < 60; i++ {
		node.events = append(node.events, creationEvent(fmt.Sprintf("rec-%d", i%30), fmt.Sprintf("owner-%d", i)))
	}
	scanner := ledger.NewScanner(newClient(t, node, 0), 50, nil)

	idx, err := scanner.Scan(context.Background(), eventType, 60)
	require.NoError(t, err)

	assert.Equal(t, []int{50, 10}, node.limits)
	assert.Equal(t, 30, idx.Len())

	owner, ok := idx.Owner("rec-0")
	require.True(t, ok)
	assert.Equal(t, "owner-0", owner, "the newest event must win")

	entries := idx.Entries()
	assert.Equal(t, "rec-29", entries[0].RecordID, "insertion order follows first sighting")
	assert.Equal(t, int64(59), entries[len(entries)-1].Seq)
}

func TestScannerWindowIsFreshestEvents(t *testing.T) {
	node := &fakeNode{}
	for i := 0; i < 20; i++ {
		node.events = append(node.events, creationEvent(fmt.Sprintf("rec-%d", i), "owner"))
	}
	scanner := ledger.NewScanner(newClient(t, node, 0), 50, nil)

	idx, err := scanner.Scan(context.Background(), eventType, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"rec-4", "rec-3", "rec-2", "rec-1", "rec-0"}, idx.IDs())
}

func TestScannerSkipsMalformedEvents(t *testing.T) {
	node := &fakeNode{events: []ledger.Event{
		creationEvent("rec-1", "alice"),
		{ParsedJSON: json.RawMessage(`{"resume":"rec-2"}`)},
		{ParsedJSON: json.RawMessage(`"not an object"`)},
	}}
	scanner := ledger.NewScanner(newClient(t, node, 0), 0, nil)

	idx, err := scanner.Scan(context.Background(), eventType, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-1"}, idx.IDs())
}

func TestScannerNormalizesOwnerAddresses(t *testing.T) {
	node := &fakeNode{events: []ledger.Event{creationEvent("rec-1", "0xAB")}}
	scanner := ledger.NewScanner(newClient(t, node, 0), 0, nil)

	idx, err := scanner.Scan(context.Background(), eventType, 0)
	require.NoError(t, err)

	owner, ok := idx.Owner("rec-1")
	require.True(t, ok)
	assert.Equal(t, "0x"+strings.Repeat("0", 62)+"ab", owner)
}

func TestScannerPropagatesTransportError(t *testing.T) {
	node := &fakeNode{statuses: []int{500, 500}}
	scanner := ledger.NewScanner(newClient(t, node, 1), 50, nil)

	_, err := scanner.Scan(context.Background(), eventType, 10)
	require.Error(t, err)

	var te *ledger.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "suix_queryEvents", te.Method)
	assert.Equal(t, int32(2), node.calls.Load(), "one try plus one retry")
}

func TestClientRetriesTransientStatus(t *testing.T) {
	node := &fakeNode{
		statuses: []int{http.StatusServiceUnavailable, http.StatusTooManyRequests},
		events:   []ledger.Event{creationEvent("rec-1", "alice")},
	}
	client := newClient(t, node, 3)

	page, err := client.QueryEvents(context.Background(), eventType, nil, 10, true)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int32(3), node.calls.Load())
}

func TestClientDoesNotRetryRPCErrors(t *testing.T) {
	node := &fakeNode{}
	client := newClient(t, node, 3)

	err := client.Call(context.Background(), "unknown_method", nil, nil)
	require.Error(t, err)

	var rpcErr *ledger.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32601, rpcErr.Code)
	assert.Equal(t, int32(1), node.calls.Load())
}

func TestFetchNotFoundIsNotAnError(t *testing.T) {
	node := &fakeNode{objects: map[string]json.RawMessage{}}
	fetcher := ledger.NewFetcher(newClient(t, node, 0), 4, nil)

	snap, err := fetcher.Fetch(context.Background(), "0xgone")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFetchReturnsSnapshot(t *testing.T) {
	node := &fakeNode{objects: map[string]json.RawMessage{
		"0x1": objectJSON("0x1", map[string]any{"name": "Alice"}),
	}}
	fetcher := ledger.NewFetcher(newClient(t, node, 0), 4, nil)

	snap, err := fetcher.Fetch(context.Background(), "0x1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "0x1", snap.ObjectID)
	assert.Equal(t, "7", snap.Version)
	assert.JSONEq(t, `"Alice"`, string(snap.Fields["name"]))
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	node := &fakeNode{
		objects:     map[string]json.RawMessage{},
		failObjects: map[string]bool{"0x3": true},
	}
	ids := []string{"0x1", "0x2", "0x3", "0x4", "0x5"}
	for _, id := range ids {
		node.objects[id] = objectJSON(id, map[string]any{"name": id})
	}
	delete(node.objects, "0x5")
	fetcher := ledger.NewFetcher(newClient(t, node, 0), 2, nil)

	result := fetcher.FetchAll(context.Background(), append(ids, "0x1"))

	assert.Len(t, result.Snapshots, 3)
	assert.Equal(t, []string{"0x3"}, result.Failed)
	assert.Equal(t, []string{"0x5"}, result.Missing)
	assert.NotContains(t, result.Snapshots, "0x3")
}

func TestFetchAllBoundsConcurrency(t *testing.T) {
	node := &fakeNode{objects: map[string]json.RawMessage{}, delay: 20 * time.Millisecond}
	var ids []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("0x%d", i)
		ids = append(ids, id)
		node.objects[id] = objectJSON(id, map[string]any{})
	}
	fetcher := ledger.NewFetcher(newClient(t, node, 0), 3, nil)

	result := fetcher.FetchAll(context.Background(), ids)

	assert.Len(t, result.Snapshots, 10)
	assert.LessOrEqual(t, node.maxInflight.Load(), int32(3))
}

func TestFetchAllStopsOnCanceledContext(t *testing.T) {
	node := &fakeNode{objects: map[string]json.RawMessage{}}
	fetcher := ledger.NewFetcher(newClient(t, node, 0), 3, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := fetcher.FetchAll(ctx, []string{"0x1", "0x2"})

	assert.Empty(t, result.Snapshots)
	assert.Equal(t, []string{"0x1", "0x2"}, result.Failed)
	assert.Equal(t, int32(0), node.calls.Load())
}

func TestFetchOwnedFollowsPages(t *testing.T) {
	node := &fakeNode{owned: [][]json.RawMessage{
		{objectJSON("0x1", map[string]any{"name": "a"})},
		{objectJSON("0x2", map[string]any{"name": "b"}), json.RawMessage(`{"error":{"code":"displayError"}}`)},
	}}
	fetcher := ledger.NewFetcher(newClient(t, node, 0), 3, nil)

	snaps, err := fetcher.FetchOwned(context.Background(), "alice", "0xpkg::resume::Resume")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "0x1", snaps[0].ObjectID)
	assert.Equal(t, "0x2", snaps[1].ObjectID)
}

func TestClientLatestCheckpoint(t *testing.T) {
	client := newClient(t, &fakeNode{}, 0)

	seq, err := client.LatestCheckpoint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456", seq)
}
