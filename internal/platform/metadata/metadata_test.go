package metadata

import (
	"testing"

	"github.com/SlpAus/reaction-game-backend/internal/platform/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetValue(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, Migrate(db))

	v, err := GetValue(db, CatalogFingerprintKey)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, SetValue(db, CatalogFingerprintKey, "abc"))
	require.NoError(t, SetValue(db, CatalogFingerprintKey, "def"))

	v, err = GetValue(db, CatalogFingerprintKey)
	require.NoError(t, err)
	assert.Equal(t, "def", v)

	var count int64
	require.NoError(t, db.Model(&Metadata{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
