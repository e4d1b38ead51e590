package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hailsim/internal/config"
	"github.com/talgya/hailsim/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadRun(t *testing.T) {
	db := openTestDB(t)

	cfg := config.Default()
	cfg.Seed = 17
	res := engine.Result{
		RunID:      "run-1",
		Strategy:   config.StrategyHotspotSeeking,
		Seed:       17,
		Ticks:      420,
		TotalRides: 6,
		PerCar:     []int{3, 0, 2, 1},
	}
	require.NoError(t, db.SaveRun(res, cfg))

	rec, err := db.LoadRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", rec.ID)
	assert.Equal(t, string(config.StrategyHotspotSeeking), rec.Strategy)
	assert.Equal(t, int64(17), rec.Seed)
	assert.Equal(t, int64(420), rec.Ticks)
	assert.Equal(t, 6, rec.TotalRides)
	assert.Equal(t, 4, rec.NumCars)
	assert.Equal(t, []int{3, 0, 2, 1}, rec.PerCar)
	if diff := cmp.Diff(cfg, rec.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRunMissing(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LoadRun("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRunDuplicate(t *testing.T) {
	db := openTestDB(t)
	res := engine.Result{RunID: "dup", Strategy: config.StrategyStationary, PerCar: []int{1}}
	require.NoError(t, db.SaveRun(res, config.Default()))
	assert.Error(t, db.SaveRun(res, config.Default()))
}

func TestDeleteRunCascadesTallies(t *testing.T) {
	db := openTestDB(t)
	res := engine.Result{RunID: "gone", Strategy: config.StrategyRandomWander, PerCar: []int{2, 3}}
	require.NoError(t, db.SaveRun(res, config.Default()))

	require.NoError(t, db.DeleteRun("gone"))

	var tallies int
	require.NoError(t, db.conn.Get(&tallies, "SELECT COUNT(*) FROM car_tallies WHERE run_id = ?", "gone"))
	assert.Zero(t, tallies)

	assert.ErrorIs(t, db.DeleteRun("gone"), ErrRunNotFound)
}

func TestTallyNeedsRun(t *testing.T) {
	db := openTestDB(t)
	_, err := db.conn.Exec("INSERT INTO car_tallies (run_id, car_id, rides) VALUES (?, ?, ?)", "ghost", 1, 1)
	assert.Error(t, err, "foreign keys should be enforced")
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)

	runs, err := db.ListRuns("", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	for _, r := range []engine.Result{
		{RunID: "a", Strategy: config.StrategyStationary, PerCar: []int{1}},
		{RunID: "b", Strategy: config.StrategyRandomWander, PerCar: []int{1}},
		{RunID: "c", Strategy: config.StrategyRandomWander, PerCar: []int{1}},
	} {
		require.NoError(t, db.SaveRun(r, config.Default()))
	}

	runs, err = db.ListRuns("", 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].ID, "newest first")

	runs, err = db.ListRuns(string(config.StrategyRandomWander), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	runs, err = db.ListRuns("", 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveMeta("last_run_id", "x"))
	require.NoError(t, db.SaveMeta("last_run_id", "y"))

	v, err := db.GetMeta("last_run_id")
	require.NoError(t, err)
	assert.Equal(t, "y", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}
