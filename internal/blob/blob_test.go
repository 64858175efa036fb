package blob_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-ledger-backend/internal/blob"
	"resume-ledger-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// Mock store

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) EstimateCost(ctx context.Context, size int64, epochs int) (domain.BlobCost, error) {
	args := m.Called(ctx, size, epochs)
	return args.Get(0).(domain.BlobCost), args.Error(1)
}

func (m *MockBlobStore) WriteBlob(ctx context.Context, data []byte, epochs int, deletable bool) (string, error) {
	args := m.Called(ctx, data, epochs, deletable)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) ConfirmBlob(ctx context.Context, blobID string) error {
	return m.Called(ctx, blobID).Error(0)
}

func (m *MockBlobStore) ReadBlob(ctx context.Context, blobID string) ([]byte, error) {
	args := m.Called(ctx, blobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) BlobURL(blobID string) string {
	return "https://agg/v1/blobs/" + blobID
}

func TestPublisherConfirmed(t *testing.T) {
	store := new(MockBlobStore)
	store.On("EstimateCost", mock.Anything, int64(len(pngHeader)), 3).Return(domain.BlobCost{StorageCost: 3, WriteCost: 1}, nil)
	store.On("WriteBlob", mock.Anything, pngHeader, 3, false).Return("blob-1", nil)
	store.On("ConfirmBlob", mock.Anything, "blob-1").Return(nil)

	res, err := blob.NewPublisher(store, nil).Publish(context.Background(), pngHeader, 3, false)

	require.NoError(t, err)
	assert.Equal(t, domain.TierConfirmed, res.Tier)
	assert.Equal(t, "blob-1", res.BlobID)
	assert.Equal(t, "https://agg/v1/blobs/blob-1", res.URL)
	require.NotNil(t, res.Cost)
	assert.Equal(t, uint64(3), res.Cost.StorageCost)
	assert.True(t, res.Durable())
	store.AssertExpectations(t)
}

func TestPublisherDegradedWhenConfirmationsShort(t *testing.T) {
	store := new(MockBlobStore)
	store.On("EstimateCost", mock.Anything, mock.Anything, mock.Anything).Return(domain.BlobCost{}, nil)
	store.On("WriteBlob", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("blob-2", nil)
	store.On("ConfirmBlob", mock.Anything, "blob-2").Return(blob.ErrInsufficientConfirmations)

	res, err := blob.NewPublisher(store, nil).Publish(context.Background(), pngHeader, 1, true)

	require.NoError(t, err)
	assert.Equal(t, domain.TierDegradedButWritten, res.Tier)
	assert.Equal(t, "https://agg/v1/blobs/blob-2", res.URL)
	assert.True(t, res.Durable())
}

func TestPublisherFallbackGuarantee(t *testing.T) {
	cases := map[string]func(*MockBlobStore){
		"write fails": func(s *MockBlobStore) {
			s.On("WriteBlob", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", blob.ErrWriteFailed)
		},
		"write returns no id": func(s *MockBlobStore) {
			s.On("WriteBlob", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", nil)
		},
		"confirm fails hard": func(s *MockBlobStore) {
			s.On("WriteBlob", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("blob-3", nil)
			s.On("ConfirmBlob", mock.Anything, "blob-3").Return(errors.New("aggregator rejected"))
		},
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			store := new(MockBlobStore)
			store.On("EstimateCost", mock.Anything, mock.Anything, mock.Anything).Return(domain.BlobCost{}, errors.New("pricing down"))
			setup(store)

			res, err := blob.NewPublisher(store, nil).Publish(context.Background(), pngHeader, 2, false)

			require.NoError(t, err)
			assert.Equal(t, domain.TierInlineFallback, res.Tier)
			assert.Empty(t, res.BlobID)
			assert.Nil(t, res.Cost)
			assert.False(t, res.Durable())

			data, mime, err := blob.DecodeDataURI(res.URL)
			require.NoError(t, err)
			assert.Equal(t, pngHeader, data)
			assert.Equal(t, "image/png", mime)
		})
	}
}

func TestPublisherRejectsInvalidInput(t *testing.T) {
	store := new(MockBlobStore)
	p := blob.NewPublisher(store, nil)

	_, err := p.Publish(context.Background(), nil, 1, false)
	assert.ErrorIs(t, err, blob.ErrInvalidInput)

	_, err = p.Publish(context.Background(), []byte("x"), 0, false)
	assert.ErrorIs(t, err, blob.ErrInvalidInput)

	_, err = p.Read(context.Background(), "")
	assert.ErrorIs(t, err, blob.ErrInvalidInput)

	store.AssertNotCalled(t, "WriteBlob", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDataURIRejectsGarbage(t *testing.T) {
	for _, in := range []string{"https://x", "data:text/plain,hello", "data:image/png;base64,%%%"} {
		_, _, err := blob.DecodeDataURI(in)
		assert.ErrorIs(t, err, blob.ErrInvalidDataURI, in)
	}
	assert.True(t, blob.IsDataURI(blob.EncodeDataURI([]byte("hi"))))
}

// fakeWalrus serves publisher and aggregator routes from one content-addressed map.
type fakeWalrus struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	certified bool
	putStatus int
	lastQuery string
}

func newFakeWalrus() *fakeWalrus {
	return &fakeWalrus{blobs: map[string][]byte{}, certified: true}
}

func (f *fakeWalrus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPut && r.URL.Path == "/v1/blobs":
		f.lastQuery = r.URL.RawQuery
		if f.putStatus != 0 {
			w.WriteHeader(f.putStatus)
			return
		}
		body, _ := io.ReadAll(r.Body)
		sum := sha256.Sum256(body)
		id := hex.EncodeToString(sum[:8])
		if _, seen := f.blobs[id]; seen {
			_ = json.NewEncoder(w).Encode(map[string]any{"alreadyCertified": map[string]any{"blobId": id, "endEpoch": 9}})
			return
		}
		f.blobs[id] = body
		_ = json.NewEncoder(w).Encode(map[string]any{
			"newlyCreated": map[string]any{"blobObject": map[string]any{"id": "0xobj", "blobId": id}, "cost": 10},
		})
	case strings.HasPrefix(r.URL.Path, "/v1/blobs/"):
		data, ok := f.blobs[strings.TrimPrefix(r.URL.Path, "/v1/blobs/")]
		if !ok || !f.certified {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newWalrusStore(srv *httptest.Server) *blob.WalrusStore {
	return blob.NewWalrusStore(blob.WalrusConfig{
		PublisherURL:        srv.URL + "/",
		AggregatorURL:       srv.URL,
		SendObjectTo:        "0xabc",
		StoragePricePerUnit: 11000,
		WritePricePerUnit:   20000,
		ConfirmTimeout:      200 * time.Millisecond,
		ConfirmInterval:     20 * time.Millisecond,
	})
}

func TestWalrusUploadRoundTrip(t *testing.T) {
	fake := newFakeWalrus()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	p := blob.NewPublisher(newWalrusStore(srv), nil)

	payload := bytes.Repeat([]byte("resume"), 1000)
	res, err := p.Publish(context.Background(), payload, 5, true)
	require.NoError(t, err)
	require.Equal(t, domain.TierConfirmed, res.Tier)
	assert.Contains(t, fake.lastQuery, "epochs=5")
	assert.Contains(t, fake.lastQuery, "deletable=true")
	assert.Contains(t, fake.lastQuery, "send_object_to=0xabc")

	got, err := p.Read(context.Background(), res.BlobID)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	again, err := p.Publish(context.Background(), payload, 5, true)
	require.NoError(t, err)
	assert.Equal(t, res.BlobID, again.BlobID, "already certified blobs keep their id")
}

func TestWalrusUncertifiedBlobIsDegraded(t *testing.T) {
	fake := newFakeWalrus()
	fake.certified = false
	srv := httptest.NewServer(fake)
	defer srv.Close()

	res, err := blob.NewPublisher(newWalrusStore(srv), nil).Publish(context.Background(), pngHeader, 1, false)

	require.NoError(t, err)
	assert.Equal(t, domain.TierDegradedButWritten, res.Tier)
	assert.NotEmpty(t, res.BlobID)
	assert.True(t, strings.HasPrefix(res.URL, srv.URL+"/v1/blobs/"))
}

func TestWalrusPublisherErrorFallsBackInline(t *testing.T) {
	fake := newFakeWalrus()
	fake.putStatus = http.StatusInternalServerError
	srv := httptest.NewServer(fake)
	defer srv.Close()

	res, err := blob.NewPublisher(newWalrusStore(srv), nil).Publish(context.Background(), pngHeader, 1, false)

	require.NoError(t, err)
	assert.Equal(t, domain.TierInlineFallback, res.Tier)
	assert.True(t, blob.IsDataURI(res.URL))
}

func TestWalrusReadMissingBlob(t *testing.T) {
	srv := httptest.NewServer(newFakeWalrus())
	defer srv.Close()

	_, err := newWalrusStore(srv).ReadBlob(context.Background(), "nope")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestWalrusEstimateCost(t *testing.T) {
	store := blob.NewWalrusStore(blob.WalrusConfig{StoragePricePerUnit: 11000, WritePricePerUnit: 20000})

	cost, err := store.EstimateCost(context.Background(), (1<<20)+1, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*3*11000), cost.StorageCost)
	assert.Equal(t, uint64(2*20000), cost.WriteCost)

	_, err = store.EstimateCost(context.Background(), 0, 3)
	assert.ErrorIs(t, err, blob.ErrInvalidInput)
}

// fakeS3 keeps objects in memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]*s3.PutObjectInput
	bodies  map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]*s3.PutObjectInput{}, bodies: map[string][]byte{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = in
	f.bodies[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bodies[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.bodies[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	api := newFakeS3()
	store := blob.NewS3Store(api, blob.S3Config{
		Bucket:        "avatars",
		PublicBaseURL: "https://cdn.example.com/",
		EpochDuration: time.Hour,
	})
	p := blob.NewPublisher(store, nil)

	res, err := p.Publish(context.Background(), pngHeader, 2, true)
	require.NoError(t, err)
	assert.Equal(t, domain.TierConfirmed, res.Tier)
	assert.Equal(t, blob.ContentID(pngHeader), res.BlobID)
	assert.Equal(t, "https://cdn.example.com/blobs/"+res.BlobID, res.URL)

	put := api.objects["blobs/"+res.BlobID]
	require.NotNil(t, put)
	assert.Equal(t, "image/png", aws.ToString(put.ContentType))
	assert.Equal(t, "true", put.Metadata["deletable"])
	assert.Nil(t, put.Expires, "retention is carried by tags, not the cache header")

	tags, err := url.ParseQuery(aws.ToString(put.Tagging))
	require.NoError(t, err)
	assert.Equal(t, "2", tags.Get("retention-epochs"))
	assert.Equal(t, "1", tags.Get("retention-days"))
	assert.Equal(t, "true", tags.Get("deletable"))
	expiresAt, err := time.Parse(time.RFC3339, tags.Get("expires-at"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)
	assert.Equal(t, tags.Get("expires-at"), put.Metadata["expires-at"])

	got, err := p.Read(context.Background(), res.BlobID)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)

	_, err = store.ReadBlob(context.Background(), "missing")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestContentIDIsStable(t *testing.T) {
	assert.Equal(t, blob.ContentID([]byte("a")), blob.ContentID([]byte("a")))
	assert.NotEqual(t, blob.ContentID([]byte("a")), blob.ContentID([]byte("b")))
	assert.Len(t, blob.ContentID(nil), 43)
}
