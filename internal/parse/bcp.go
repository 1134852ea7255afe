package parse

import "github.com/warhall/tmeta/internal/record"

// parseBCP parses a BCP-style export: one event per file, one standings row
// per player, event metadata supplied by the importer. A record is only
// emitted when the hints identify the event and at least one row parses.
func parseBCP(raw string, hints Hints) []record.TournamentRecord {
	if hints.EventName == "" || hints.EventDate == "" {
		return nil
	}

	rows := readRows(raw)
	if len(rows) < 2 {
		return nil
	}

	cols := headerIndex(rows[0])

	var players []record.TournamentPlayer
	for _, row := range rows[1:] {
		if p, ok := playerFromRow(cols, row); ok {
			players = append(players, p)
		}
	}
	if len(players) == 0 {
		return nil
	}

	return []record.TournamentRecord{{
		EventName: hints.EventName,
		EventDate: hints.EventDate,
		Format:    hints.Format,
		Players:   players,
	}}
}
