// Package record defines the canonical tournament result model shared by all
// parsers and consumers. Records are created once at parse time and never
// mutated afterwards.
package record

import (
	"encoding/json"
	"fmt"
)

// TournamentRecord is one competitive event: its metadata and the final
// standings of every player who competed.
type TournamentRecord struct {
	EventName string             `json:"eventName"`
	EventDate string             `json:"eventDate"` // ISO date, e.g. "2025-04-12".
	Format    string             `json:"format"`
	Players   []TournamentPlayer `json:"players"`
}

// TournamentPlayer is one competitor's result within an event.
type TournamentPlayer struct {
	Placement   int          `json:"placement"` // 1 is best.
	Faction     string       `json:"faction"`
	Detachment  string       `json:"detachment,omitempty"`
	Wins        int          `json:"wins"`
	Losses      int          `json:"losses"`
	Draws       int          `json:"draws"`
	Points      float64      `json:"points"`
	PlayerName  string       `json:"playerName,omitempty"` // Empty means anonymous.
	ListText    string       `json:"listText,omitempty"`
	UnitResults []UnitResult `json:"unitResults,omitempty"`
}

// UnitResult is per-unit performance data for one player's army.
type UnitResult struct {
	Name      string  `json:"name"`
	Games     int     `json:"games"`
	AvgPoints float64 `json:"avgPoints"`
}

// Games returns the player's total game count in this event.
func (p TournamentPlayer) Games() int {
	return p.Wins + p.Losses + p.Draws
}

// Name returns the player's display name, or a faction@placement placeholder
// when the standings didn't include one.
func (p TournamentPlayer) Name() string {
	if p.PlayerName != "" {
		return p.PlayerName
	}
	return fmt.Sprintf("%s@%d", p.Faction, p.Placement)
}

// Encode serializes records to the JSON payload stored with an import.
func Encode(records []TournamentRecord) ([]byte, error) {
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return b, nil
}

// Decode deserializes a stored import payload. Callers treat a decode error
// as "skip this import", never as fatal - stored payloads can predate schema
// changes or be corrupt.
func Decode(data []byte) ([]TournamentRecord, error) {
	var records []TournamentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
