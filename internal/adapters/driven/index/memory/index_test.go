package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

func record(name string, keywords ...string) domain.NormalizedRecord {
	return domain.NormalizedRecord{
		Fields:         domain.Fields{"name": name, "keywords": keywords},
		ContextualText: name,
	}
}

func TestIndex_UpsertGet(t *testing.T) {
	x := New()
	ctx := context.Background()

	require.NoError(t, x.Upsert(ctx, "c", "a", record("Alpha", "co2")))

	entry, err := x.Get(ctx, "c", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", entry.Key)
	assert.Equal(t, "Alpha", entry.Fields.String("name"))
	assert.Equal(t, []string{"co2"}, entry.Fields.Strings("keywords"))
}

func TestIndex_Upsert_Idempotent(t *testing.T) {
	x := New()
	ctx := context.Background()
	rec := record("Alpha")

	require.NoError(t, x.Upsert(ctx, "c", "a", rec))
	require.NoError(t, x.Upsert(ctx, "c", "a", rec))

	n, err := x.Count(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIndex_Upsert_CopiesFields(t *testing.T) {
	x := New()
	ctx := context.Background()
	rec := record("Alpha", "co2")

	require.NoError(t, x.Upsert(ctx, "c", "a", rec))
	rec.Fields["keywords"].([]string)[0] = "mutated"

	entry, err := x.Get(ctx, "c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"co2"}, entry.Fields.Strings("keywords"))
}

func TestIndex_Upsert_Rejects(t *testing.T) {
	x := New()

	err := x.Upsert(context.Background(), "c", "a", domain.NormalizedRecord{Fields: domain.Fields{"n": 1}})
	assert.ErrorIs(t, err, domain.ErrIndex)

	err = x.Upsert(context.Background(), "c", "", record("x"))
	assert.ErrorIs(t, err, domain.ErrIndex)
}

func TestIndex_Get_NotFound(t *testing.T) {
	_, err := New().Get(context.Background(), "c", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndex_Search(t *testing.T) {
	x := New()
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	x.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	require.NoError(t, x.Upsert(ctx, "c", "a", record("Carbon dioxide", "CO2")))
	require.NoError(t, x.Upsert(ctx, "c", "b", record("Methane", "CH4")))
	require.NoError(t, x.Upsert(ctx, "c", "c", record("Carbon flux", "CO2", "ocean")))

	keys := func(entries []domain.IndexEntry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.Key)
		}
		return out
	}

	got, err := x.Search(ctx, "c", "carbon", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, keys(got))

	got, err = x.Search(ctx, "c", "CO2 ocean", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys(got))

	got, err = x.Search(ctx, "c", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, keys(got))
}

func TestIndex_ConcurrentUpserts(t *testing.T) {
	x := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%10))
			assert.NoError(t, x.Upsert(ctx, "c", key, record("r")))
		}(i)
	}
	wg.Wait()

	n, err := x.Count(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}
