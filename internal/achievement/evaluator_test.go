package achievement

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/platform/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T, defs ...Definition) *gorm.DB {
	t.Helper()
	db := dbtest.Open(t, &Achievement{}, &UserAchievement{})
	if len(defs) > 0 {
		require.NoError(t, SeedCatalog(db, defs))
	}
	return db
}

func avg(f float64) *float64 { return &f }

func fixedGames(n int64) func() (int64, error) {
	return func() (int64, error) { return n, nil }
}

func names(list []Achievement) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Name)
	}
	return out
}

func TestEvaluateHighScoreThreshold(t *testing.T) {
	db := setupDB(t, Definition{Name: "Thousand", Requirement: HighScore(1000), Points: 50})

	got, err := Evaluate(db, Facts{UserID: 1, Score: 999, CompletedGames: fixedGames(1)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Evaluate(db, Facts{UserID: 1, Score: 1000, CompletedGames: fixedGames(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Thousand"}, names(got))
}

func TestEvaluateIsIdempotent(t *testing.T) {
	db := setupDB(t, Definition{Name: "Thousand", Requirement: HighScore(1000)})

	first, err := Evaluate(db, Facts{UserID: 7, Score: 1500})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := Evaluate(db, Facts{UserID: 7, Score: 2000})
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Model(&UserAchievement{}).Where("user_id = ?", 7).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEvaluateFastReaction(t *testing.T) {
	db := setupDB(t, Definition{Name: "Lightning", Requirement: FastReaction(200)})

	got, err := Evaluate(db, Facts{UserID: 1, Score: 10})
	require.NoError(t, err)
	assert.Empty(t, got, "没有反应时间时不应解锁")

	got, err = Evaluate(db, Facts{UserID: 1, Score: 10, AvgReactionTime: avg(200.5)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Evaluate(db, Facts{UserID: 1, Score: 10, AvgReactionTime: avg(200)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lightning"}, names(got))
}

func TestEvaluateGamesPlayedCountsLazily(t *testing.T) {
	db := setupDB(t,
		Definition{Name: "Three", Requirement: GamesPlayed(3)},
		Definition{Name: "Five", Requirement: GamesPlayed(5)},
	)

	calls := 0
	counter := func() (int64, error) {
		calls++
		return 3, nil
	}

	got, err := Evaluate(db, Facts{UserID: 2, CompletedGames: counter})
	require.NoError(t, err)
	assert.Equal(t, []string{"Three"}, names(got))
	assert.Equal(t, 1, calls, "计数只应查询一次")

	scoreOnly := setupDB(t, Definition{Name: "Score", Requirement: HighScore(1)})
	calls = 0
	_, err = Evaluate(scoreOnly, Facts{UserID: 2, Score: 0, CompletedGames: counter})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestEvaluatePropagatesCounterError(t *testing.T) {
	db := setupDB(t, Definition{Name: "Three", Requirement: GamesPlayed(3)})

	_, err := Evaluate(db, Facts{UserID: 2, CompletedGames: func() (int64, error) {
		return 0, errors.New("boom")
	}})
	assert.Error(t, err)
}

func TestEvaluateUnknownRequirementNeverMatches(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Exec(
		"INSERT INTO achievements (name, description, achievement_type, requirement, points, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		"Mystery", "", "special", `{"kind":"streak","days":3}`, 10, time.Now(),
	).Error)

	catalog, err := LoadCatalog(db)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, KindUnknown, catalog[0].Requirement.Kind)

	got, err := Evaluate(db, Facts{UserID: 1, Score: 1 << 20, AvgReactionTime: avg(1), CompletedGames: fixedGames(1000)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluateConcurrentUnlocksOnce(t *testing.T) {
	db := setupDB(t, Definition{Name: "Thousand", Requirement: HighScore(1000)})

	const workers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Evaluate(db, Facts{UserID: 9, Score: 1200})
			assert.NoError(t, err)
			mu.Lock()
			total += len(got)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, total)
	var count int64
	require.NoError(t, db.Model(&UserAchievement{}).Where("user_id = ?", 9).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUnlockRaceIsAbsorbed(t *testing.T) {
	db := setupDB(t, Definition{Name: "Thousand", Requirement: HighScore(1000)})
	catalog, err := LoadCatalog(db)
	require.NoError(t, err)

	// 模拟另一个请求在本次预检查之后抢先写入
	require.NoError(t, db.Create(&UserAchievement{UserID: 3, AchievementID: catalog[0].ID, UnlockedAt: time.Now()}).Error)
	err = db.Create(&UserAchievement{UserID: 3, AchievementID: catalog[0].ID, UnlockedAt: time.Now()}).Error
	assert.Error(t, err, "唯一索引必须拒绝重复解锁")

	got, err := Evaluate(db, Facts{UserID: 3, Score: 5000})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListUnlockedAndPoints(t *testing.T) {
	db := setupDB(t,
		Definition{Name: "Five Hundred", Requirement: HighScore(500), Points: 10},
		Definition{Name: "Thousand", Requirement: HighScore(1000), Points: 50},
	)

	_, err := Evaluate(db, Facts{UserID: 4, Score: 1000})
	require.NoError(t, err)

	items, err := ListUnlocked(db, 4)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotEmpty(t, items[0].Achievement.Name)

	points, err := TotalPoints(db, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 60, points)

	none, err := ListUnlocked(db, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}
