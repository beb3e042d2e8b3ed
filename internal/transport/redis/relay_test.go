package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/testing/suite"
)

type collector struct {
	mu       sync.Mutex
	sessions []*entity.Session
}

func (that *collector) Deliver(session *entity.Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions = append(that.sessions, session)
}

func (that *collector) received() []*entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]*entity.Session(nil), that.sessions...)
}

func TestRelay_RoundTrip(t *testing.T) {
	ctx, st := suite.New(t)

	// Given: two instances sharing one Redis
	first, second := &collector{}, &collector{}
	publisher := NewRelay(st.Logger, st.Storage, first)
	subscriber := NewRelay(st.Logger, st.NewClient(), second)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 2)
	go func() { done <- publisher.Run(runCtx) }()
	go func() { done <- subscriber.Run(runCtx) }()

	<-publisher.Ready()
	<-subscriber.Ready()

	// When: one instance publishes a snapshot
	game := entity.NewGame("g1", "p1", time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC))
	session := entity.NewSession(game, nil, map[string]*entity.Player{"p1": entity.NewPlayer("p1", "alice")})
	require.NoError(t, publisher.Publish(ctx, session))

	// Then: both instances deliver it locally
	for _, c := range []*collector{first, second} {
		require.Eventually(t, func() bool { return len(c.received()) == 1 }, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, session, c.received()[0])
	}

	// And: Run stops with its context
	cancel()
	for j := 0; j < 2; j++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("relay did not stop")
		}
	}
}

func TestRelay_DropsMalformedEvents(t *testing.T) {
	ctx, st := suite.New(t)

	local := &collector{}
	relay := NewRelay(st.Logger, st.Storage, local)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = relay.Run(runCtx) }()
	<-relay.Ready()

	// When: garbage and then a valid snapshot arrive
	require.NoError(t, st.Storage.Publish(ctx, Channel, "not json").Err())
	session := entity.NewSession(entity.NewGame("g2", "p1", time.Now().UTC()), nil, nil)
	require.NoError(t, relay.Publish(ctx, session))

	// Then: only the valid one is delivered
	require.Eventually(t, func() bool { return len(local.received()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "g2", local.received()[0].ID)
}
