// Package parse turns raw tournament export text into canonical records.
//
// Tournament exports are user-supplied and inherently messy, so parsers are
// tolerant: rows that can't be interpreted are dropped, and an
// empty or header-only input yields no records. Parsers only return an error
// for a caller mistake (an unknown format code), never for bad data.
package parse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/warhall/tmeta/internal/record"
)

// Format codes for the supported export dialects.
const (
	// FormatBCP is a results-per-row export with one event per file, as
	// produced by BCP-style tournament apps.
	FormatBCP = "A"
	// FormatAdmiral is a results-per-row export that may contain multiple
	// events per file plus optional per-unit statistic rows, as produced by
	// TabletopAdmiral-style apps.
	FormatAdmiral = "B"
	// FormatGeneric is a self-described export: event grouping always comes
	// from the data itself, never from hints.
	FormatGeneric = "C"
)

// fallbackFormat is used when a generic export has no format column.
const fallbackFormat = "standard"

// Hints carry event metadata supplied by the importer for dialects whose
// files don't describe their own event.
type Hints struct {
	EventName string
	EventDate string
	Format    string
}

// Parse parses raw export text in the given dialect. It returns an error only
// for an unknown format code; malformed input yields fewer (or zero) records.
func Parse(format, raw string, hints Hints) ([]record.TournamentRecord, error) {
	switch format {
	case FormatBCP:
		return parseBCP(raw, hints), nil
	case FormatAdmiral:
		return parseAdmiral(raw, hints), nil
	case FormatGeneric:
		return parseGeneric(raw, hints), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// readRows reads CSV rows, dropping any row the reader can't interpret.
func readRows(raw string) [][]string {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The reader recovers at the next line; drop this row.
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// columns maps lowercased, trimmed header names to their index.
type columns map[string]int

// headerIndex builds a column lookup from the first row.
func headerIndex(header []string) columns {
	cols := make(columns, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// lookup returns the first matching alias's cell value.
func (c columns) lookup(row []string, aliases ...string) string {
	for _, alias := range aliases {
		if i, ok := c[alias]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

// has reports whether any of the aliases is a known column.
func (c columns) has(aliases ...string) bool {
	for _, alias := range aliases {
		if _, ok := c[alias]; ok {
			return true
		}
	}
	return false
}

// playerFromRow interprets one standings row. It returns false for rows that
// can't be a player result - most commonly a non-numeric placement.
func playerFromRow(cols columns, row []string) (record.TournamentPlayer, bool) {
	placement, err := strconv.Atoi(cols.lookup(row, "rank", "place", "placement"))
	if err != nil || placement < 1 {
		return record.TournamentPlayer{}, false
	}

	p := record.TournamentPlayer{
		Placement:  placement,
		Faction:    cols.lookup(row, "faction", "army"),
		Detachment: cols.lookup(row, "detachment"),
		PlayerName: cols.lookup(row, "player", "name", "player name"),
		ListText:   cols.lookup(row, "list", "army list"),
	}
	if p.Faction == "" {
		return record.TournamentPlayer{}, false
	}

	p.Wins = nonNegativeInt(cols.lookup(row, "wins", "w"))
	p.Losses = nonNegativeInt(cols.lookup(row, "losses", "l"))
	p.Draws = nonNegativeInt(cols.lookup(row, "draws", "d"))
	p.Points, _ = strconv.ParseFloat(cols.lookup(row, "points", "cp", "pts"), 64)

	return p, true
}

func nonNegativeInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
