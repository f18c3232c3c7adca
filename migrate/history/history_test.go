package history_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlecho/migrate/history"
	"github.com/satishbabariya/sqlecho/migrate/shadow"
)

func TestRegistry(t *testing.T) {
	r := history.NewRegistry()
	assert.False(t, r.Contains("V1__init.sql"))

	assert.True(t, r.Add("V2__more.sql"))
	assert.True(t, r.Add("V1__init.sql"))
	assert.False(t, r.Add("V1__init.sql"))

	assert.True(t, r.Contains("V1__init.sql"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"V1__init.sql", "V2__more.sql"}, r.Names())
}

func TestRegistry_ConcurrentAdd(t *testing.T) {
	r := history.NewRegistry()

	var (
		wg    sync.WaitGroup
		added = make(chan bool, 20)
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added <- r.Add("V1__init.sql")
		}()
	}
	wg.Wait()
	close(added)

	wins := 0
	for ok := range added {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	target, err := shadow.Open(ctx, shadow.Config{})
	require.NoError(t, err)
	defer target.Drop(ctx)

	ledger := history.NewLedger(target.DB(), target.Engine())
	require.NoError(t, ledger.InitTable(ctx))
	// idempotent
	require.NoError(t, ledger.InitTable(ctx))

	applied := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, ledger.Record(ctx, &history.Record{
		ScriptName:      "V1__init.sql",
		Checksum:        history.CalculateChecksum("CREATE TABLE a (id INT);"),
		AppliedAt:       applied,
		ExecutionTime:   12,
		StatementsRun:   3,
		StatementErrors: 1,
	}))
	require.NoError(t, ledger.Record(ctx, &history.Record{
		ScriptName: "V2__more.sql",
		Checksum:   history.CalculateChecksum(""),
		AppliedAt:  applied.Add(time.Minute),
	}))

	records, err := ledger.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "V1__init.sql", records[0].ScriptName)
	assert.Equal(t, int64(12), records[0].ExecutionTime)
	assert.Equal(t, 3, records[0].StatementsRun)
	assert.Equal(t, 1, records[0].StatementErrors)
	assert.True(t, applied.Equal(records[0].AppliedAt), "got %v", records[0].AppliedAt)

	// script names are unique
	err = ledger.Record(ctx, &history.Record{ScriptName: "V1__init.sql", AppliedAt: applied})
	assert.Error(t, err)

	registry := history.NewRegistry()
	require.NoError(t, ledger.Seed(ctx, registry))
	assert.Equal(t, []string{"V1__init.sql", "V2__more.sql"}, registry.Names())
}

func TestCalculateChecksum(t *testing.T) {
	sum := history.CalculateChecksum("CREATE TABLE a (id INT);")
	assert.Len(t, sum, 64)
	assert.Equal(t, sum, history.CalculateChecksum("CREATE TABLE a (id INT);"))
	assert.NotEqual(t, sum, history.CalculateChecksum("CREATE TABLE b (id INT);"))
}
