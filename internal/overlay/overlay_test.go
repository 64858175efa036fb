package overlay_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/internal/overlay"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := overlay.NewMemoryStore()

	_, ok, err := store.Get(ctx, domain.AvatarKey("0xa"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, domain.AvatarKey("0xa"), "first"))
	require.NoError(t, store.Set(ctx, domain.AvatarKey("0xa"), "second"))

	v, ok, err := store.Get(ctx, domain.AvatarKey("0xa"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, store.Delete(ctx, domain.AvatarKey("0xa")))
	_, ok, _ = store.Get(ctx, domain.AvatarKey("0xa"))
	assert.False(t, ok)
}

func TestMemoryStoreGetManyOmitsAbsentKeys(t *testing.T) {
	ctx := context.Background()
	store := overlay.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "c", "3"))

	got, err := store.GetMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, got)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := overlay.NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "k", "v")
		}()
		go func() {
			defer wg.Done()
			_, _ = store.GetMany(ctx, []string{"k"})
		}()
	}
	wg.Wait()

	v, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestRedisStoreWrapsConnectionErrors(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	store := overlay.NewRedisStore(client)

	_, _, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlay get k")

	got, err := store.GetMany(context.Background(), nil)
	require.NoError(t, err, "no keys means no round trip")
	assert.Empty(t, got)
}

// fakeDB records statements and serves canned rows.
type fakeDB struct {
	execs   []string
	args    [][]any
	row     fakeRow
	rows    [][2]string
	execErr error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	f.args = append(f.args, args)
	return &fakeRows{data: f.rows}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	f.args = append(f.args, args)
	return f.row
}

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.value
	return nil
}

type fakeRows struct {
	data [][2]string
	i    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	*dest[0].(*string) = row[0]
	*dest[1].(*string) = row[1]
	return nil
}

func TestPostgresStoreGetMapsNoRowsToAbsent(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	store := overlay.NewPostgresStore(db)

	_, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresStoreGetManyUsesArrayParameter(t *testing.T) {
	db := &fakeDB{rows: [][2]string{{"a", "1"}, {"b", "2"}}}
	store := overlay.NewPostgresStore(db)

	got, err := store.GetMany(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)

	require.Len(t, db.args, 1)
	assert.Equal(t, pq.Array([]string{"a", "b", "c"}), db.args[0][0])
}

func TestPostgresStoreSetUpserts(t *testing.T) {
	db := &fakeDB{}
	store := overlay.NewPostgresStore(db)

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.Set(context.Background(), "k", "v"))

	require.Len(t, db.execs, 2)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS resume_overlay")
	assert.Contains(t, db.execs[1], "ON CONFLICT (key) DO UPDATE")
	assert.Equal(t, []any{"k", "v"}, db.args[1])
}
