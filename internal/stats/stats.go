// Package stats computes read-side aggregations over the decoded record
// corpus: faction and detachment win rates, matchup estimates, win-rate
// timelines, and top lists.
//
// Every function here is deterministic and side-effect free. The corpus is
// recomputed from stored records on every call rather than maintained as a
// materialized view, so results always reflect whatever the store holds.
// Ties break by stable input order unless a secondary sort key is stated.
package stats

import (
	"cmp"
	"slices"

	"github.com/warhall/tmeta/internal/record"
)

// score is the Glicko-style game value of a tally: wins plus half of draws.
func score(wins, draws int) float64 {
	return float64(wins) + 0.5*float64(draws)
}

// FactionStats aggregates one faction's results across the corpus.
type FactionStats struct {
	Faction string
	Games   int // wins+losses+draws across all appearances.
	Wins    int
	Losses  int
	Draws   int
	WinRate float64 // Draws count as half a win.
	Entries int     // Player entries, a representation measure.
}

// Factions returns per-faction stats sorted by win rate descending. Factions
// with fewer than minGames total games are dropped - tiny samples are noise.
func Factions(records []record.TournamentRecord, minGames int) []FactionStats {
	var order []string
	byFaction := make(map[string]*FactionStats)

	for _, rec := range records {
		for _, p := range rec.Players {
			fs, ok := byFaction[p.Faction]
			if !ok {
				fs = &FactionStats{Faction: p.Faction}
				byFaction[p.Faction] = fs
				order = append(order, p.Faction)
			}
			fs.Games += p.Games()
			fs.Wins += p.Wins
			fs.Losses += p.Losses
			fs.Draws += p.Draws
			fs.Entries++
		}
	}

	result := make([]FactionStats, 0, len(order))
	for _, faction := range order {
		fs := byFaction[faction]
		if fs.Games < minGames {
			continue
		}
		if fs.Games > 0 {
			fs.WinRate = score(fs.Wins, fs.Draws) / float64(fs.Games)
		}
		result = append(result, *fs)
	}

	slices.SortStableFunc(result, func(a, b FactionStats) int {
		return cmp.Compare(b.WinRate, a.WinRate)
	})
	return result
}

// DetachmentStats aggregates one (faction, detachment) pair.
type DetachmentStats struct {
	Faction    string
	Detachment string
	Games      int
	Wins       int
	Losses     int
	Draws      int
	WinRate    float64
	Entries    int
}

// Detachments returns per-(faction, detachment) stats sorted by win rate
// descending, optionally filtered to one faction. Entries without a
// detachment group under the empty string.
func Detachments(records []record.TournamentRecord, faction string, minGames int) []DetachmentStats {
	type key struct{ faction, detachment string }

	var order []key
	grouped := make(map[key]*DetachmentStats)

	for _, rec := range records {
		for _, p := range rec.Players {
			if faction != "" && p.Faction != faction {
				continue
			}
			k := key{faction: p.Faction, detachment: p.Detachment}
			ds, ok := grouped[k]
			if !ok {
				ds = &DetachmentStats{Faction: p.Faction, Detachment: p.Detachment}
				grouped[k] = ds
				order = append(order, k)
			}
			ds.Games += p.Games()
			ds.Wins += p.Wins
			ds.Losses += p.Losses
			ds.Draws += p.Draws
			ds.Entries++
		}
	}

	result := make([]DetachmentStats, 0, len(order))
	for _, k := range order {
		ds := grouped[k]
		if ds.Games < minGames {
			continue
		}
		if ds.Games > 0 {
			ds.WinRate = score(ds.Wins, ds.Draws) / float64(ds.Games)
		}
		result = append(result, *ds)
	}

	slices.SortStableFunc(result, func(a, b DetachmentStats) int {
		return cmp.Compare(b.WinRate, a.WinRate)
	})
	return result
}

// MatchupCell estimates one faction's results against another.
//
// Standings data has no per-game pairings, so this is a statistical
// approximation, not a head-to-head record: within each event a faction's
// games are assumed to be distributed across the other factions in
// proportion to their game counts.
type MatchupCell struct {
	Faction  string
	Opponent string
	Games    float64 // Estimated games between the pair, from Faction's side.
	WinRate  float64 // Estimated, from Faction's perspective.
}

// Matchups returns estimated matchup cells for every ordered faction pair
// that appeared in the same event, sorted by faction then opponent. Cells
// with fewer than minGames estimated games are dropped.
func Matchups(records []record.TournamentRecord, minGames int) []MatchupCell {
	type key struct{ faction, opponent string }
	type cell struct{ games, wins float64 }

	grouped := make(map[key]*cell)

	for _, rec := range records {
		type eventAgg struct {
			games int
			wins  float64
		}
		factions := make(map[string]*eventAgg)
		var order []string

		for _, p := range rec.Players {
			fa, ok := factions[p.Faction]
			if !ok {
				fa = &eventAgg{}
				factions[p.Faction] = fa
				order = append(order, p.Faction)
			}
			fa.games += p.Games()
			fa.wins += score(p.Wins, p.Draws)
		}

		total := 0
		for _, fa := range factions {
			total += fa.games
		}

		for _, faction := range order {
			fa := factions[faction]
			others := float64(total - fa.games)
			if others == 0 {
				continue
			}
			for _, opponent := range order {
				if opponent == faction {
					continue
				}
				share := float64(factions[opponent].games) / others
				k := key{faction: faction, opponent: opponent}
				c, ok := grouped[k]
				if !ok {
					c = &cell{}
					grouped[k] = c
				}
				c.games += float64(fa.games) * share
				c.wins += fa.wins * share
			}
		}
	}

	result := make([]MatchupCell, 0, len(grouped))
	for k, c := range grouped {
		if c.games < float64(minGames) {
			continue
		}
		result = append(result, MatchupCell{
			Faction:  k.faction,
			Opponent: k.opponent,
			Games:    c.games,
			WinRate:  c.wins / c.games,
		})
	}

	slices.SortFunc(result, func(a, b MatchupCell) int {
		if v := cmp.Compare(a.Faction, b.Faction); v != 0 {
			return v
		}
		return cmp.Compare(a.Opponent, b.Opponent)
	})
	return result
}

// TimelinePoint is aggregate results for one event date.
type TimelinePoint struct {
	Date    string
	Games   int
	WinRate float64
}

// Timeline returns win rate bucketed by event date in chronological order,
// optionally filtered to one faction. ISO dates sort lexically, so no date
// parsing is needed.
func Timeline(records []record.TournamentRecord, faction string) []TimelinePoint {
	type agg struct {
		games int
		wins  float64
	}
	buckets := make(map[string]*agg)

	for _, rec := range records {
		for _, p := range rec.Players {
			if faction != "" && p.Faction != faction {
				continue
			}
			b, ok := buckets[rec.EventDate]
			if !ok {
				b = &agg{}
				buckets[rec.EventDate] = b
			}
			b.games += p.Games()
			b.wins += score(p.Wins, p.Draws)
		}
	}

	result := make([]TimelinePoint, 0, len(buckets))
	for date, b := range buckets {
		point := TimelinePoint{Date: date, Games: b.games}
		if b.games > 0 {
			point.WinRate = b.wins / float64(b.games)
		}
		result = append(result, point)
	}

	slices.SortFunc(result, func(a, b TimelinePoint) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return result
}

// ListEntry is one player entry with a submitted army list, for
// competitive-meta research.
type ListEntry struct {
	PlayerName string
	Faction    string
	Detachment string
	EventName  string
	EventDate  string
	Placement  int
	Points     float64
	WinRate    float64
	ListText   string
}

// TopLists returns the highest-scoring entries that include list text,
// sorted by points then win rate descending, optionally filtered by faction
// and detachment, capped at limit (zero means uncapped).
func TopLists(records []record.TournamentRecord, faction, detachment string, limit int) []ListEntry {
	var result []ListEntry

	for _, rec := range records {
		for _, p := range rec.Players {
			if p.ListText == "" {
				continue
			}
			if faction != "" && p.Faction != faction {
				continue
			}
			if detachment != "" && p.Detachment != detachment {
				continue
			}

			entry := ListEntry{
				PlayerName: p.Name(),
				Faction:    p.Faction,
				Detachment: p.Detachment,
				EventName:  rec.EventName,
				EventDate:  rec.EventDate,
				Placement:  p.Placement,
				Points:     p.Points,
				ListText:   p.ListText,
			}
			if p.Games() > 0 {
				entry.WinRate = score(p.Wins, p.Draws) / float64(p.Games())
			}
			result = append(result, entry)
		}
	}

	slices.SortStableFunc(result, func(a, b ListEntry) int {
		if v := cmp.Compare(b.Points, a.Points); v != 0 {
			return v
		}
		return cmp.Compare(b.WinRate, a.WinRate)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
