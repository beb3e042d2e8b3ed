package entity

import "time"

type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol Mark   `json:"symbol"`
}

type SessionMove struct {
	Player     *PlayerRef `json:"player"`
	Position   int        `json:"position"`
	MoveNumber int        `json:"move_number"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Session is the externally visible snapshot of a game.
type Session struct {
	ID          string         `json:"id"`
	Player1     *Participant   `json:"player1"`
	Player2     *Participant   `json:"player2"`
	Board       Board          `json:"board"`
	CurrentTurn *PlayerRef     `json:"current_turn"`
	Status      string         `json:"status"`
	Winner      *PlayerRef     `json:"winner"`
	Result      *string        `json:"result"`
	Moves       []*SessionMove `json:"moves"`
	Version     int64          `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	FinishedAt  *time.Time     `json:"finished_at"`
}

// NewSession - builds the snapshot of a game. players is keyed by player id; participants
// missing from it are rendered with their id only.
func NewSession(game *Game, moves []*Move, players map[string]*Player) *Session {
	session := &Session{
		ID:          game.ID,
		Player1:     participant(game.Player1ID, PlayerX, players),
		Player2:     participant(game.Player2ID, PlayerO, players),
		Board:       game.Board,
		CurrentTurn: ref(game.CurrentTurn, players),
		Status:      game.Status,
		Winner:      ref(game.WinnerID, players),
		Moves:       make([]*SessionMove, 0, len(moves)),
		Version:     game.Version,
		CreatedAt:   game.CreatedAt,
		UpdatedAt:   game.UpdatedAt,
		FinishedAt:  game.FinishedAt,
	}

	if game.Result != ResultNone {
		result := game.Result
		session.Result = &result
	}

	for _, move := range moves {
		session.Moves = append(session.Moves, &SessionMove{
			Player:     ref(move.PlayerID, players),
			Position:   move.Position,
			MoveNumber: move.MoveNumber,
			CreatedAt:  move.CreatedAt,
		})
	}

	return session
}

func participant(id string, symbol Mark, players map[string]*Player) *Participant {
	if id == "" {
		return nil
	}

	result := &Participant{ID: id, Symbol: symbol}
	if player, ok := players[id]; ok && player != nil {
		result.Name = player.Name
	}

	return result
}

func ref(id string, players map[string]*Player) *PlayerRef {
	if id == "" {
		return nil
	}

	if player, ok := players[id]; ok && player != nil {
		return player.Ref()
	}

	return &PlayerRef{ID: id}
}
