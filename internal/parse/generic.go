package parse

import "github.com/warhall/tmeta/internal/record"

// parseGeneric parses a self-described export. It has the same row shape as
// the BCP dialect but always infers event grouping from event and date
// columns in the data itself, ignoring any supplied event hints. When the
// file has no format column every record gets the fallback format tag.
func parseGeneric(raw string, _ Hints) []record.TournamentRecord {
	rows := readRows(raw)
	if len(rows) < 2 {
		return nil
	}

	cols := headerIndex(rows[0])

	type eventKey struct{ name, date string }

	var order []eventKey
	grouped := make(map[eventKey]*record.TournamentRecord)

	for _, row := range rows[1:] {
		name := cols.lookup(row, "event", "event name", "tournament")
		date := cols.lookup(row, "date", "event date")
		if name == "" || date == "" {
			continue
		}

		p, ok := playerFromRow(cols, row)
		if !ok {
			continue
		}

		key := eventKey{name: name, date: date}
		rec, ok := grouped[key]
		if !ok {
			format := cols.lookup(row, "format")
			if format == "" {
				format = fallbackFormat
			}
			rec = &record.TournamentRecord{EventName: name, EventDate: date, Format: format}
			grouped[key] = rec
			order = append(order, key)
		}
		rec.Players = append(rec.Players, p)
	}

	records := make([]record.TournamentRecord, 0, len(order))
	for _, key := range order {
		records = append(records, *grouped[key])
	}
	return records
}
