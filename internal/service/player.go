package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps the rank offset far from int overflow.
	MaxPage = 1_000_000
)

type Profile struct {
	*entity.Player
	TotalGames int     `json:"total_games"`
	WinRate    float64 `json:"win_rate"`
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	*entity.Player
}

type LeaderboardPage struct {
	Players  []*LeaderboardEntry `json:"players"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Total    int64               `json:"total"`
}

type PlayerService interface {
	Profile(ctx context.Context, id string) (*Profile, error)
	// Leaderboard - page is 1-based and capped at MaxPage; a non-positive size means DefaultPageSize,
	// larger ones are capped at MaxPageSize.
	Leaderboard(ctx context.Context, page, pageSize int) (*LeaderboardPage, error)
}

type playerService struct {
	playerRepo playerRepo
}

func NewPlayerService(playerRepo playerRepo) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
	}
}

func (that *playerService) Profile(ctx context.Context, id string) (*Profile, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return &Profile{
		Player:     player,
		TotalGames: player.TotalGames(),
		WinRate:    player.WinRate(),
	}, nil
}

func (that *playerService) Leaderboard(ctx context.Context, page, pageSize int) (*LeaderboardPage, error) {
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}

	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	offset := (page - 1) * pageSize

	players, total, err := that.playerRepo.Leaderboard(ctx, int64(offset), int64(pageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]*LeaderboardEntry, 0, len(players))
	for i, player := range players {
		entries = append(entries, &LeaderboardEntry{Rank: offset + i + 1, Player: player})
	}

	return &LeaderboardPage{
		Players:  entries,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}
