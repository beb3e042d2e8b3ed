package service

import (
	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// RatingUpdater mutates player statistics on the single transition into finished.
type RatingUpdater struct {
	win  int
	loss int
	draw int
}

func NewRatingUpdater(cfg config.Rating) *RatingUpdater {
	return &RatingUpdater{
		win:  cfg.Win,
		loss: cfg.Loss,
		draw: cfg.Draw,
	}
}

func (that *RatingUpdater) ApplyWin(winner, loser *entity.Player) {
	winner.Wins++
	winner.Rating += that.win

	loser.Losses++
	loser.Rating = max(0, loser.Rating-that.loss)
}

func (that *RatingUpdater) ApplyDraw(first, second *entity.Player) {
	for _, player := range []*entity.Player{first, second} {
		player.Draws++
		player.Rating += that.draw
	}
}
