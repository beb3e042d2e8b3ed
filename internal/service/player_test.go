package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

func TestPlayerService_Profile(t *testing.T) {
	f := newFixture(t)

	// Given: alice won a game against bob
	gameID := f.startGame(t)
	for _, play := range []struct {
		playerID string
		position int
	}{
		{f.alice.ID, 0}, {f.bob.ID, 3}, {f.alice.ID, 1}, {f.bob.ID, 4}, {f.alice.ID, 2},
	} {
		_, err := f.gameplay.SubmitMove(f.ctx, gameID, play.playerID, play.position)
		require.NoError(t, err)
	}

	// When: her profile is read
	profile, err := f.players.Profile(f.ctx, f.alice.ID)

	// Then: derived statistics are included
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalGames)
	assert.InDelta(t, 100.0, profile.WinRate, 0)
	assert.Equal(t, 1025, profile.Rating)

	_, err = f.players.Profile(f.ctx, "ghost")
	require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
}

func TestPlayerService_Leaderboard(t *testing.T) {
	f := newFixture(t)

	// Given: three players with different ratings
	for id, rating := range map[string]int{f.alice.ID: 1010, f.bob.ID: 990, f.carol.ID: 1050} {
		player := f.player(t, id)
		player.Rating = rating
		require.NoError(t, f.playerRepo.CreateOrUpdate(f.ctx, player))
	}

	t.Run("first page", func(t *testing.T) {
		page, err := f.players.Leaderboard(f.ctx, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Players, 2)
		assert.Equal(t, &LeaderboardEntry{Rank: 1, Player: &entity.Player{ID: f.carol.ID, Name: "carol", Rating: 1050}}, page.Players[0])
		assert.Equal(t, 2, page.Players[1].Rank)
		assert.Equal(t, f.alice.ID, page.Players[1].ID)
	})

	t.Run("second page keeps ranks", func(t *testing.T) {
		page, err := f.players.Leaderboard(f.ctx, 2, 2)

		require.NoError(t, err)
		require.Len(t, page.Players, 1)
		assert.Equal(t, 3, page.Players[0].Rank)
		assert.Equal(t, f.bob.ID, page.Players[0].ID)
	})

	t.Run("invalid paging falls back to defaults", func(t *testing.T) {
		page, err := f.players.Leaderboard(f.ctx, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, DefaultPageSize, page.PageSize)
		assert.Len(t, page.Players, 3)

		page, err = f.players.Leaderboard(f.ctx, 1, 10_000)
		require.NoError(t, err)
		assert.Equal(t, MaxPageSize, page.PageSize)
	})

	t.Run("huge page is capped and empty", func(t *testing.T) {
		page, err := f.players.Leaderboard(f.ctx, math.MaxInt, MaxPageSize)

		require.NoError(t, err)
		assert.Equal(t, MaxPage, page.Page)
		assert.Equal(t, int64(3), page.Total)
		assert.Empty(t, page.Players)
	})
}
