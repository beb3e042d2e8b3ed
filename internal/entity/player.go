package entity

import "math"

const DefaultRating = 1000

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
	Rating int    `json:"rating"`
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Rating: DefaultRating,
	}
}

func (that *Player) TotalGames() int {
	return that.Wins + that.Losses + that.Draws
}

// WinRate - percentage of won games rounded to two decimals.
func (that *Player) WinRate() float64 {
	total := that.TotalGames()
	if total == 0 {
		return 0
	}

	return math.Round(float64(that.Wins)/float64(total)*100*100) / 100
}

// Ref - the short {id, name} form used inside session snapshots.
func (that *Player) Ref() *PlayerRef {
	if that == nil {
		return nil
	}

	return &PlayerRef{ID: that.ID, Name: that.Name}
}
