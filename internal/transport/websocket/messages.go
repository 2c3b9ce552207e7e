package websocket

// ClientMessage is any message a player sends. Type selects which fields apply.
type ClientMessage struct {
	Type        string `json:"type"`
	EngineFirst bool   `json:"engineFirst,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Column      int    `json:"column"`
	Ticket      string `json:"ticket,omitempty"`
}

// ServerMessage is any message the server sends.
type ServerMessage struct {
	Type       string  `json:"type"`
	GameID     string  `json:"gameId,omitempty"`
	Ticket     string  `json:"ticket,omitempty"`
	Board      [][]int `json:"board,omitempty"`
	YourPlayer int     `json:"yourPlayer,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
	Column     *int    `json:"column,omitempty"`
	Row        *int    `json:"row,omitempty"`
	Player     int     `json:"player,omitempty"`
	Score      *int    `json:"score,omitempty"`
	Nodes      uint64  `json:"nodes,omitempty"`
	ElapsedMs  *int64  `json:"elapsedMs,omitempty"`
	Depth      int     `json:"depth,omitempty"`
	Status     string  `json:"status,omitempty"`
	Winner     *int    `json:"winner,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Message    string  `json:"message,omitempty"`
}

const (
	typeStart  = "start"
	typeMove   = "move"
	typeResume = "resume"
	typeResign = "resign"

	typeGameStarted = "game_started"
	typeMoveMade    = "move_made"
	typeEngineMove  = "engine_move"
	typeGameOver    = "game_over"
	typeError       = "error"
)
