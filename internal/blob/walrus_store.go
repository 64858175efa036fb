package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resume-ledger-backend/internal/domain"
)

type WalrusConfig struct {
	PublisherURL  string
	AggregatorURL string
	// SendObjectTo receives the blob object on the ledger, if set.
	SendObjectTo string

	StoragePricePerUnit uint64
	WritePricePerUnit   uint64

	ConfirmTimeout  time.Duration
	ConfirmInterval time.Duration
	HTTPClient      *http.Client
}

// WalrusStore talks to a Walrus publisher for writes and an aggregator for
// reads and availability checks.
type WalrusStore struct {
	cfg  WalrusConfig
	http *http.Client
}

func NewWalrusStore(cfg WalrusConfig) *WalrusStore {
	cfg.PublisherURL = strings.TrimRight(cfg.PublisherURL, "/")
	cfg.AggregatorURL = strings.TrimRight(cfg.AggregatorURL, "/")
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 30 * time.Second
	}
	if cfg.ConfirmInterval <= 0 {
		cfg.ConfirmInterval = time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &WalrusStore{cfg: cfg, http: client}
}

type walrusBlobObject struct {
	ID             string `json:"id"`
	BlobID         string `json:"blobId"`
	CertifiedEpoch *int   `json:"certifiedEpoch"`
}

type walrusStoreResponse struct {
	NewlyCreated *struct {
		BlobObject walrusBlobObject `json:"blobObject"`
		Cost       uint64           `json:"cost"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID   string `json:"blobId"`
		EndEpoch int    `json:"endEpoch"`
	} `json:"alreadyCertified"`
}

func (s *WalrusStore) EstimateCost(_ context.Context, size int64, epochs int) (domain.BlobCost, error) {
	return estimateCost(size, epochs, s.cfg.StoragePricePerUnit, s.cfg.WritePricePerUnit)
}

func (s *WalrusStore) WriteBlob(ctx context.Context, data []byte, epochs int, deletable bool) (string, error) {
	q := url.Values{}
	q.Set("epochs", strconv.Itoa(epochs))
	if deletable {
		q.Set("deletable", "true")
	}
	if s.cfg.SendObjectTo != "" {
		q.Set("send_object_to", s.cfg.SendObjectTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.cfg.PublisherURL+"/v1/blobs?"+q.Encode(), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrWriteFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: publisher returned %d: %s", ErrWriteFailed, resp.StatusCode, truncate(body, 200))
	}

	var out walrusStoreResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrWriteFailed, err)
	}
	switch {
	case out.NewlyCreated != nil && out.NewlyCreated.BlobObject.BlobID != "":
		return out.NewlyCreated.BlobObject.BlobID, nil
	case out.AlreadyCertified != nil && out.AlreadyCertified.BlobID != "":
		return out.AlreadyCertified.BlobID, nil
	}
	return "", fmt.Errorf("%w: response carried no blob id", ErrWriteFailed)
}

// ConfirmBlob polls the aggregator until it serves the blob or the confirm
// timeout elapses.
func (s *WalrusStore) ConfirmBlob(ctx context.Context, blobID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.ConfirmInterval)
	defer ticker.Stop()

	for {
		ok, err := s.available(ctx, blobID)
		if err != nil && ctx.Err() == nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s not served by aggregator after %s", ErrInsufficientConfirmations, blobID, s.cfg.ConfirmTimeout)
		case <-ticker.C:
		}
	}
}

func (s *WalrusStore) available(ctx context.Context, blobID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.BlobURL(blobID), nil)
	if err != nil {
		return false, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		// Transport hiccups count as "not yet"; the deadline decides.
		return false, nil
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500:
		// Not yet certified, or the aggregator is still catching up.
		return false, nil
	default:
		return false, fmt.Errorf("aggregator head %s: status %d", blobID, resp.StatusCode)
	}
}

func (s *WalrusStore) ReadBlob(ctx context.Context, blobID string) ([]byte, error) {
	if blobID == "" {
		return nil, errInvalidBlobID
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BlobURL(blobID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregator get %s: %w", blobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("aggregator get %s: status %d", blobID, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *WalrusStore) BlobURL(blobID string) string {
	return s.cfg.AggregatorURL + "/v1/blobs/" + url.PathEscape(blobID)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
