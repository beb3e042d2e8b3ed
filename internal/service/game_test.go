package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

func TestGameService_GetGame(t *testing.T) {
	f := newFixture(t)

	gameID := f.startGame(t)
	_, err := f.gameplay.SubmitMove(f.ctx, gameID, f.alice.ID, 4)
	require.NoError(t, err)

	// When: the game is fetched
	session, err := f.games.GetGame(f.ctx, gameID)

	// Then: the snapshot includes names and moves
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Player1.Name)
	assert.Equal(t, "bob", session.Player2.Name)
	require.Len(t, session.Moves, 1)
	assert.Equal(t, &entity.PlayerRef{ID: f.alice.ID, Name: "alice"}, session.Moves[0].Player)

	_, err = f.games.GetGame(f.ctx, "missing")
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
}

func TestGameService_ListGamesForPlayer(t *testing.T) {
	f := newFixture(t)

	// Given: alice finished one game against bob and then opened another
	first := f.startGame(t)
	for _, play := range []struct {
		playerID string
		position int
	}{
		{f.alice.ID, 0}, {f.bob.ID, 3}, {f.alice.ID, 1}, {f.bob.ID, 4}, {f.alice.ID, 2},
	} {
		_, err := f.gameplay.SubmitMove(f.ctx, first, play.playerID, play.position)
		require.NoError(t, err)
	}

	second, outcome, err := f.matchmaking.CreateOrResumeGame(f.ctx, f.alice)
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	// When: her games are listed
	sessions, err := f.games.ListGamesForPlayer(f.ctx, f.alice.ID)

	// Then: the newest game comes first
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first, sessions[1].ID)
	assert.Equal(t, entity.StatusFinished, sessions[1].Status)

	// And: bob only sees the shared game
	sessions, err = f.games.ListGamesForPlayer(f.ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, first, sessions[0].ID)
}
