package user

import (
	"testing"

	"github.com/SlpAus/reaction-game-backend/internal/platform/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUsers(t *testing.T, names ...string) (*gorm.DB, []User) {
	t.Helper()
	db := dbtest.Open(t, &User{})
	users := make([]User, 0, len(names))
	for _, name := range names {
		u := User{Username: name, Email: name + "@example.com"}
		require.NoError(t, db.Create(&u).Error)
		users = append(users, u)
	}
	return db, users
}

func TestFindByIdentifier(t *testing.T) {
	db, users := seedUsers(t, "alice", "bob")

	u, err := FindByIdentifier(db, "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, users[0].ID, u.ID)

	u, err = FindByIdentifier(db, "bob@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, users[1].ID, u.ID)

	u, err = FindByIdentifier(db, "carol")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = FindByID(db, 999)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSearchMergesUsernameAndEmail(t *testing.T) {
	db, users := seedUsers(t, "zeta", "alpha", "mallory")
	// 用户名不含查询词，但邮箱包含
	require.NoError(t, db.Model(&users[2]).Update("email", "alpha.fan@example.com").Error)

	found, err := Search(db, "alpha", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alpha", found[0].Username)
	assert.Equal(t, "mallory", found[1].Username)

	found, err = Search(db, "alpha", SearchOptions{ExcludeIDs: []uint{users[1].ID}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "mallory", found[0].Username)

	found, err = Search(db, "example", SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "alpha", found[0].Username)
}

func TestSearchEscapesWildcards(t *testing.T) {
	db, _ := seedUsers(t, "alice", "bob", "under_score")

	found, err := Search(db, "%%", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = Search(db, "__", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = Search(db, "r_s", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "under_score", found[0].Username)
}

func TestSummary(t *testing.T) {
	avatar := "https://cdn.example.com/a.png"
	u := User{ID: 3, Username: "alice", Email: "alice@example.com", AvatarURL: &avatar, Bio: "hi"}
	s := u.Summary()
	assert.Equal(t, Summary{ID: 3, Username: "alice", AvatarURL: &avatar, Bio: "hi"}, s)
}
