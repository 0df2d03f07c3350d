package leaderboard

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/game"
	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/platform/database/dbtest"
	"github.com/SlpAus/reaction-game-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, &user.User{}, &Entry{})
}

func createUser(t *testing.T, db *gorm.DB, name string) user.User {
	t.Helper()
	u := user.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func ptr(f float64) *float64 { return &f }

func TestRecordFirstEntry(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	changed, err := Record(db, RecordInput{UserID: alice.ID, Difficulty: game.Medium, Score: 1000, AvgReactionTime: ptr(210), AchievedAt: at})
	require.NoError(t, err)
	assert.True(t, changed)

	entry, err := Get(db, alice.ID, game.Medium)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1000, entry.Score)
	require.NotNil(t, entry.AvgReactionTime)
	assert.InDelta(t, 210.0, *entry.AvgReactionTime, 1e-9)
	assert.True(t, entry.DateAchieved.Equal(at))

	other, err := Get(db, alice.ID, game.Hard)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestRecordKeepsPersonalBest(t *testing.T) {
	cases := []struct {
		name   string
		scores []int
	}{
		{"ascending", []int{300, 500}},
		{"descending", []int{500, 300}},
		{"equal", []int{500, 500}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupDB(t)
			u := createUser(t, db, "player")
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

			for i, score := range tc.scores {
				_, err := Record(db, RecordInput{UserID: u.ID, Difficulty: game.Easy, Score: score, AchievedAt: base.Add(time.Duration(i) * time.Hour)})
				require.NoError(t, err)
			}

			entry, err := Get(db, u.ID, game.Easy)
			require.NoError(t, err)
			require.NotNil(t, entry)
			assert.Equal(t, 500, entry.Score)

			var count int64
			require.NoError(t, db.Model(&Entry{}).Count(&count).Error)
			assert.EqualValues(t, 1, count)
		})
	}
}

func TestRecordLowerScoreIsNoop(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, "bob")
	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := Record(db, RecordInput{UserID: u.ID, Difficulty: game.Hard, Score: 800, AvgReactionTime: ptr(250), AchievedAt: first})
	require.NoError(t, err)

	changed, err := Record(db, RecordInput{UserID: u.ID, Difficulty: game.Hard, Score: 700, AvgReactionTime: ptr(180), AchievedAt: first.Add(time.Hour)})
	require.NoError(t, err)
	assert.False(t, changed)

	entry, err := Get(db, u.ID, game.Hard)
	require.NoError(t, err)
	assert.Equal(t, 800, entry.Score)
	assert.InDelta(t, 250.0, *entry.AvgReactionTime, 1e-9)
	assert.True(t, entry.DateAchieved.Equal(first))
}

func TestRecordValidation(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, "carol")

	_, err := Record(db, RecordInput{UserID: u.ID, Difficulty: "insane", Score: 10})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Record(db, RecordInput{UserID: u.ID, Difficulty: game.Easy, Score: -1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRecordConcurrentEndsAtMax(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, "racer")

	scores := []int{120, 900, 450, 899, 30, 610}
	var wg sync.WaitGroup
	for _, s := range scores {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := Record(db, RecordInput{UserID: u.ID, Difficulty: game.Medium, Score: score, AchievedAt: time.Now()})
			assert.NoError(t, err)
		}(s)
	}
	wg.Wait()

	entry, err := Get(db, u.ID, game.Medium)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 900, entry.Score)
}

func TestListDenseRank(t *testing.T) {
	db := setupDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	scores := map[string]int{"ann": 900, "ben": 900, "cat": 700, "dan": 500}
	order := []string{"ann", "ben", "cat", "dan"}
	for i, name := range order {
		u := createUser(t, db, name)
		_, err := Record(db, RecordInput{UserID: u.ID, Difficulty: game.Easy, Score: scores[name], AchievedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	// 其他难度的成绩不影响 easy 的排名
	eve := createUser(t, db, "eve")
	_, err := Record(db, RecordInput{UserID: eve.ID, Difficulty: game.Hard, Score: 5000, AchievedAt: base})
	require.NoError(t, err)

	entries, err := List(db, Query{Difficulty: game.Easy})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, fmt.Sprintf("%s:%d", e.Username, e.Rank))
	}
	assert.Equal(t, []string{"ann:1", "ben:1", "cat:2", "dan:3"}, got)

	all, err := List(db, Query{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "eve", all[0].Username)
	assert.Equal(t, 1, all[0].Rank)
}

func TestListSearchAndLimit(t *testing.T) {
	db := setupDB(t)
	for i, name := range []string{"speedy", "speedster", "slowpoke"} {
		u := createUser(t, db, name)
		_, err := Record(db, RecordInput{UserID: u.ID, Difficulty: game.Medium, Score: 100 * (i + 1), AchievedAt: time.Now()})
		require.NoError(t, err)
	}

	found, err := List(db, Query{Search: "speed"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "speedster", found[0].Username)

	// 通配符按字面匹配
	for _, q := range []string{"%%", "__"} {
		found, err = List(db, Query{Search: q})
		require.NoError(t, err)
		assert.Empty(t, found, q)
	}

	top, err := Top(db, game.Medium, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "slowpoke", top[0].Username)
	assert.Equal(t, 300, top[0].Score)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultTopLimit, normalizeLimit(0, DefaultTopLimit))
	assert.Equal(t, 25, normalizeLimit(25, DefaultListLimit))
	assert.Equal(t, MaxLimit, normalizeLimit(10000, DefaultListLimit))
}
