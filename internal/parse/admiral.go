package parse

import (
	"strconv"
	"strings"

	"github.com/warhall/tmeta/internal/record"
)

// parseAdmiral parses a TabletopAdmiral-style export. Each standings row
// carries its own event name and date, so one file may contain several
// events; rows are grouped into one record per (event, date) pair, in the
// order each pair first appears.
//
// A standings row may be followed by unit statistic rows (first cell "unit",
// then unit name, games played, and average points). Those accumulate onto
// the preceding player until the next standings row begins.
func parseAdmiral(raw string, hints Hints) []record.TournamentRecord {
	rows := readRows(raw)
	if len(rows) < 2 {
		return nil
	}

	cols := headerIndex(rows[0])

	type eventKey struct{ name, date string }

	var order []eventKey
	grouped := make(map[eventKey]*record.TournamentRecord)
	var last *record.TournamentPlayer

	for _, row := range rows[1:] {
		if unit, ok := unitFromRow(row); ok {
			if last != nil {
				last.UnitResults = append(last.UnitResults, unit)
			}
			continue
		}

		name := cols.lookup(row, "event", "event name", "tournament")
		date := cols.lookup(row, "date", "event date")
		if name == "" || date == "" {
			last = nil
			continue
		}

		p, ok := playerFromRow(cols, row)
		if !ok {
			last = nil
			continue
		}

		key := eventKey{name: name, date: date}
		rec, ok := grouped[key]
		if !ok {
			format := cols.lookup(row, "format")
			if format == "" {
				format = hints.Format
			}
			rec = &record.TournamentRecord{EventName: name, EventDate: date, Format: format}
			grouped[key] = rec
			order = append(order, key)
		}

		rec.Players = append(rec.Players, p)
		last = &rec.Players[len(rec.Players)-1]
	}

	records := make([]record.TournamentRecord, 0, len(order))
	for _, key := range order {
		records = append(records, *grouped[key])
	}
	return records
}

// unitFromRow interprets a unit statistic row: "unit", name, games played,
// average points.
func unitFromRow(row []string) (record.UnitResult, bool) {
	if len(row) < 3 || !strings.EqualFold(strings.TrimSpace(row[0]), "unit") {
		return record.UnitResult{}, false
	}

	unit := record.UnitResult{Name: strings.TrimSpace(row[1])}
	games, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil || games < 0 {
		return record.UnitResult{}, false
	}
	unit.Games = games

	if len(row) > 3 {
		unit.AvgPoints, _ = strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	}
	return unit, true
}
