package achievement

import (
	"encoding/json"
	"testing"

	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirement(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Requirement
	}{
		{"canonical high score", `{"kind":"high_score","min_score":1000}`, HighScore(1000)},
		{"canonical fast reaction", `{"kind":"fast_reaction","max_reaction_time_ms":200}`, FastReaction(200)},
		{"canonical games played", `{"kind":"games_played","min_games":5}`, GamesPlayed(5)},
		{"legacy type key", `{"achievement_type":"fast_reaction","max_reaction_time":200}`, FastReaction(200)},
		{"inferred score", `{"min_score":500}`, HighScore(500)},
		{"inferred reaction alias", `{"min_reaction_time":500}`, FastReaction(500)},
		{"inferred games", `{"min_games":3}`, GamesPlayed(3)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRequirement([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRequirementRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		`[]`,
		`"high_score"`,
		`{}`,
		`{"min_score":1,"min_games":2}`,
		`{"kind":"streak","days":3}`,
		`{"kind":"high_score"}`,
		`{"kind":"high_score","min_score":"lots"}`,
		`{"kind":"games_played","min_games":2.5}`,
		`{"kind":"fast_reaction","max_reaction_time_ms":-1}`,
		`{"kind":42,"min_score":1}`,
	} {
		_, err := ParseRequirement([]byte(in))
		assert.True(t, apperr.Is(err, apperr.KindValidation), in)
	}
}

func TestRequirementMarshalCanonical(t *testing.T) {
	legacy, err := ParseRequirement([]byte(`{"achievement_type":"fast_reaction","max_reaction_time":200}`))
	require.NoError(t, err)

	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"fast_reaction","max_reaction_time_ms":200}`, string(data))
}

func TestRequirementScanIsLenient(t *testing.T) {
	var r Requirement
	require.NoError(t, r.Scan(`{"kind":"streak","days":3}`))
	assert.Equal(t, KindUnknown, r.Kind)

	// 无法识别的条件写回时保持原样
	v, err := r.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"streak","days":3}`, v.(string))

	require.NoError(t, r.Scan([]byte(`{"min_games":3}`)))
	assert.Equal(t, GamesPlayed(3), r)

	require.NoError(t, r.Scan(nil))
	assert.Equal(t, KindUnknown, r.Kind)

	assert.Error(t, r.Scan(42))
}
