package service

import (
	"context"
	"testing"

	"labelquest/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rankingFixture struct {
	*statsFixture
	ranking *RankingService
}

func newRankingFixture() *rankingFixture {
	sf := newStatsFixture()
	admins := &fakeAdminLister{userRepo: sf.userRepo}
	return &rankingFixture{
		statsFixture: sf,
		ranking:      NewRankingService(sf.statsRepo, sf.service, admins, 5),
	}
}

// seedPlayer gives the user n tag answers (score 2n) and materializes the
// stats row the candidate query reads.
func (f *rankingFixture) seedPlayer(username string, nTagAnswers int) *model.User {
	user := f.addUser(username)
	f.addAnswers(model.GameTags, user.ID, nTagAnswers)
	_, err := f.service.UpdateStats(context.Background(), user.ID)
	if err != nil {
		panic(err)
	}
	return user
}

func TestRankingExcludesAdmins(t *testing.T) {
	f := newRankingFixture()
	f.seedPlayer("alice", 10)
	admin := f.seedPlayer("root", 50)
	require.NoError(t, f.userRepo.SetAdmin(context.Background(), admin.ID, true))

	for _, limit := range []int{0, 1, 5, 100} {
		entries, err := f.ranking.Ranking(context.Background(), limit)
		require.NoError(t, err)
		for _, entry := range entries {
			assert.NotEqual(t, admin.ID, entry.Stats.UserID, "admin leaked into ranking at limit %d", limit)
		}
	}
}

func TestRankingOrdersByCompositeKey(t *testing.T) {
	f := newRankingFixture()
	f.seedPlayer("low", 1)
	f.seedPlayer("high", 40)
	f.seedPlayer("mid", 10)

	entries, err := f.ranking.Ranking(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "high", entries[0].Stats.Username)
	assert.Equal(t, "mid", entries[1].Stats.Username)
	assert.Equal(t, "low", entries[2].Stats.Username)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
	}
}

func TestRankingBreaksTiesByEmailAscending(t *testing.T) {
	f := newRankingFixture()
	// Identical activity, identical (overallLevel, score); email decides.
	f.seedPlayer("zed", 10)
	f.seedPlayer("amy", 10)

	for i := 0; i < 5; i++ {
		entries, err := f.ranking.Ranking(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "amy@example.org", entries[0].Stats.Email)
		assert.Equal(t, "zed@example.org", entries[1].Stats.Email)
	}
}

func TestRankingHonorsLimit(t *testing.T) {
	f := newRankingFixture()
	f.seedPlayer("a", 1)
	f.seedPlayer("b", 2)
	f.seedPlayer("c", 3)

	entries, err := f.ranking.Ranking(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Zero falls back to the default limit.
	entries, err = f.ranking.Ranking(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRankingSkipsZeroScoreUsers(t *testing.T) {
	f := newRankingFixture()
	f.seedPlayer("active", 3)
	idle := f.addUser("idle")
	_, err := f.service.UpdateStats(context.Background(), idle.ID)
	require.NoError(t, err)

	entries, err := f.ranking.Ranking(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "active", entries[0].Stats.Username)
}

func TestRankingPosition(t *testing.T) {
	f := newRankingFixture()
	first := f.seedPlayer("first", 30)
	second := f.seedPlayer("second", 20)
	third := f.seedPlayer("third", 10)

	for want, user := range map[int]*model.User{0: first, 1: second, 2: third} {
		position, err := f.ranking.RankingPosition(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, want, position)
	}
}

func TestRankingPositionUnrankedCases(t *testing.T) {
	f := newRankingFixture()
	f.seedPlayer("someone", 5)

	admin := f.seedPlayer("root", 50)
	require.NoError(t, f.userRepo.SetAdmin(context.Background(), admin.ID, true))

	idle := f.addUser("idle")
	_, err := f.service.UpdateStats(context.Background(), idle.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		userID string
	}{
		{"admin", admin.ID},
		{"zero score", idle.ID},
		{"unknown user", "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			position, err := f.ranking.RankingPosition(context.Background(), tt.userID)
			require.NoError(t, err)
			assert.Equal(t, -1, position)
		})
	}
}
