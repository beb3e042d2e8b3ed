package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/rocketscienceinc/tictactoe-arena/testing/suite"
)

var testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu       sync.Mutex
	sessions []*entity.Session
}

func (that *recordingNotifier) Publish(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions = append(that.sessions, session)
	return nil
}

func (that *recordingNotifier) Published() []*entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]*entity.Session(nil), that.sessions...)
}

type sequenceIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (that *sequenceIDs) NewID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.next++
	return fmt.Sprintf("%s-%d", that.prefix, that.next)
}

// steppingClock returns a time one second later on every call.
func steppingClock() func() time.Time {
	var (
		mu   sync.Mutex
		tick time.Duration
	)

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		tick += time.Second
		return testNow.Add(tick)
	}
}

type fixture struct {
	ctx context.Context

	gameRepo   repository.GameRepository
	playerRepo repository.PlayerRepository
	notifier   *recordingNotifier

	matchmaking *matchmakingService
	gameplay    *gamePlayService
	games       GameService
	players     PlayerService

	alice *entity.Player
	bob   *entity.Player
	carol *entity.Player
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx, st := suite.New(t)

	f := &fixture{
		ctx:        ctx,
		gameRepo:   repository.NewGameRepository(st.Storage),
		playerRepo: repository.NewPlayerRepository(st.Storage),
		notifier:   &recordingNotifier{},
		alice:      entity.NewPlayer("alice-id", "alice"),
		bob:        entity.NewPlayer("bob-id", "bob"),
		carol:      entity.NewPlayer("carol-id", "carol"),
	}

	for _, player := range []*entity.Player{f.alice, f.bob, f.carol} {
		require.NoError(t, f.playerRepo.CreateOrUpdate(ctx, player))
	}

	clock := steppingClock()
	ratings := NewRatingUpdater(config.Rating{Win: 25, Loss: 15, Draw: 5})

	f.matchmaking = NewMatchmakingService(st.Logger, f.gameRepo, f.playerRepo, f.notifier, &sequenceIDs{prefix: "game"}).(*matchmakingService)
	f.matchmaking.now = clock

	f.gameplay = NewGamePlayService(st.Logger, f.gameRepo, ratings, f.notifier, &sequenceIDs{prefix: "move"}).(*gamePlayService)
	f.gameplay.now = clock

	f.games = NewGameService(f.gameRepo, f.playerRepo)
	f.players = NewPlayerService(f.playerRepo)

	return f
}

// startGame - alice creates, bob joins; returns the in-progress game id.
func (that *fixture) startGame(t *testing.T) string {
	t.Helper()

	created, outcome, err := that.matchmaking.CreateOrResumeGame(that.ctx, that.alice)
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	joined, outcome, err := that.matchmaking.JoinMatchmaking(that.ctx, that.bob)
	require.NoError(t, err)
	require.Equal(t, OutcomeMatched, outcome)
	require.Equal(t, created.ID, joined.ID)

	return joined.ID
}

func (that *fixture) player(t *testing.T, id string) *entity.Player {
	t.Helper()

	player, err := that.playerRepo.GetByID(that.ctx, id)
	require.NoError(t, err)

	return player
}
