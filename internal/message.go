package internal

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Inbound event types. The transport delivers each with a stable
// per-connection identity; the payload shapes below are the whole contract.
const (
	EventQuickPlay         = "quickPlay"
	EventCreatePrivateGame = "createPrivateGame"
	EventJoinPrivateGame   = "joinPrivateGame"
	EventPlayerReady       = "playerReady"
	EventStartGameForReal  = "startGameForReal"
	EventPlayerAction      = "playerAction"
	EventRoundComplete     = "roundComplete"
)

// Outbound event types.
const (
	EventGameCreated        = "gameCreated"
	EventPrivateGameCreated = "privateGameCreated"
	EventGameJoined         = "gameJoined"
	EventPlayerJoined       = "playerJoined"
	EventPlayersUpdated     = "playersUpdated"
	EventReadyStatesUpdated = "readyStatesUpdated"
	EventStartCountdown     = "startGameCountDown"
	EventCancelCountdown    = "cancelGameCountDown"
	EventGameStart          = "gameStart"
	EventStartNextRound     = "startNextRound"
	EventActionRelay        = "playerAction"
	EventPlayerDisconnected = "playerDisconnected"
	EventPromoteToHost      = "promoteToHost"
	EventGameOver           = "gameOver"
	EventGameError          = "gameError"
)

// ---------------------------------------------------------------------------
// Inbound payloads
// ---------------------------------------------------------------------------

type QuickPlayData struct {
	Character string `json:"character"`
}

type CreatePrivateGameData struct {
	Character string `json:"character"`
}

type JoinPrivateGameData struct {
	GameID    string `json:"gameId"`
	Character string `json:"character"`
}

type PlayerReadyData struct {
	GameID    string `json:"gameId"`
	Character string `json:"character"`
	Ready     bool   `json:"ready"`
}

type StartGameForRealData struct {
	GameID string `json:"gameId"`
}

type PlayerActionData struct {
	GameID  string `json:"gameId"`
	Action  string `json:"action"`
	Points  int    `json:"points"`
	Powerup string `json:"powerup,omitempty"`
}

type RoundCompleteData struct {
	GameID string `json:"gameId"`
}

// ---------------------------------------------------------------------------
// Outbound payloads
// ---------------------------------------------------------------------------

type GameCreatedData struct {
	GameID string `json:"game_id"`
	IsHost bool   `json:"is_host"`
	// Seed lets clients derive deterministic cosmetic state; it is simply the
	// session id.
	Seed string `json:"seed"`
}

type GameJoinedData struct {
	GameID  string           `json:"game_id"`
	You     PlayerSnapshot   `json:"you"`
	Players []PlayerSnapshot `json:"players"`
}

type PlayerJoinedData struct {
	Player      PlayerSnapshot `json:"player"`
	PlayerCount int            `json:"player_count"`
}

type PlayersUpdatedData struct {
	Players []PlayerSnapshot `json:"players"`
}

type ReadyStatesUpdatedData struct {
	Ready       map[string]bool `json:"ready"`
	ReadyCount  int             `json:"ready_count"`
	PlayerCount int             `json:"player_count"`
	CanStart    bool            `json:"can_start"`
}

type CountdownData struct {
	GameID  string `json:"game_id"`
	Seconds int    `json:"seconds"`
}

type GameStartData struct {
	GameID      string           `json:"game_id"`
	RoundNumber int              `json:"round_number"`
	MaxRounds   int              `json:"max_rounds"`
	TargetType  string           `json:"target_type"`
	Players     []PlayerSnapshot `json:"players"`
}

type NextRoundData struct {
	GameID      string `json:"game_id"`
	RoundNumber int    `json:"round_number"`
	TargetType  string `json:"target_type"`
}

type ActionRelayData struct {
	PlayerID string `json:"player_id"`
	Action   string `json:"action"`
	Points   int    `json:"points"`
	Powerup  string `json:"powerup,omitempty"`
}

type PlayerDisconnectedData struct {
	PlayerID    string `json:"player_id"`
	NewHostID   string `json:"new_host_id,omitempty"`
	PlayerCount int    `json:"player_count"`
}

type PromoteToHostData struct {
	GameID string `json:"game_id"`
}

type StandingData struct {
	PlayerID    string `json:"player_id"`
	Seat        int    `json:"seat"`
	Character   string `json:"character"`
	Score       int    `json:"score"`
	Position    int    `json:"position"`
	IsConnected bool   `json:"is_connected"`
}

type GameOverData struct {
	GameID    string         `json:"game_id"`
	WinnerID  string         `json:"winner_id"`
	Standings []StandingData `json:"standings"`
}

type GameErrorData struct {
	Message string `json:"message"`
}
