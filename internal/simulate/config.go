package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Players        int           // Number of players to register
	Periods        int           // Number of rating periods to play
	Games          int           // Games submitted per period
	DrawRate       float64       // Probability that a game is drawn
	Spread         float64       // Standard deviation of true strength, rating points
	Workers        int           // Number of concurrent submitters
	Timeout        time.Duration // HTTP request timeout
	MinCorrelation float64       // Rank correlation required to pass
	OutputFile     string        // Output file for generated games
	Verbose        bool          // Enable verbose logging
}

// contender is a registered player with its hidden true strength.
type contender struct {
	ID       string  `json:"id"`
	Strength float64 `json:"strength"`
}

// Game is one generated outcome as posted to /results.
type Game struct {
	ResultID string `json:"result_id"`
	WinnerID string `json:"winner_id"`
	LoserID  string `json:"loser_id"`
	Draw     bool   `json:"draw"`
}

// AckResponse represents the response from result submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	PlayersRegistered int
	GamesGenerated    int
	GamesSubmitted    int
	GamesAccepted     int
	GamesDuplicate    int
	GamesFailed       int
	PeriodsClosed     int
	Correlation       float64
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
