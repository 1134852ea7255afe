// Package glicko implements the Glicko-2 rating system update described in
// Mark Glickman's paper (https://www.glicko.net/glicko/glicko2.pdf).
//
// The update is a pure function: given a player's current rating triple and
// the games they played in one rating period, it returns the new triple. It
// performs no I/O and is deterministic for a given input.
//
// Callers here feed it synthesized games - win/loss/draw tallies from
// tournament standings turned into outcomes against a fixed average opponent -
// rather than observed head-to-head pairings.
package glicko

import "math"

const (
	// DefaultRating is the rating assigned to an unrated player.
	DefaultRating = 1500
	// DefaultDeviation is the rating deviation assigned to an unrated player.
	DefaultDeviation = 350
	// DefaultVolatility is the volatility assigned to an unrated player.
	DefaultVolatility = 0.06

	// SyntheticOpponentRating is the rating of the fixed opponent used when
	// synthesizing games from a standings tally.
	SyntheticOpponentRating = 1500
	// SyntheticOpponentDeviation is the deviation of the synthetic opponent.
	// Lower than the unrated default: the "average opponent" is a composite
	// of a whole field, not a single unknown player.
	SyntheticOpponentDeviation = 200

	// tau constrains how much volatility can change per period.
	tau = 0.5
	// scale converts between the display scale and the internal Glicko-2
	// scale (mu/phi).
	scale = 173.7178
	// epsilon is the convergence tolerance for the volatility solve.
	epsilon = 1e-6
	// maxIterations bounds the volatility solve. The Illinois method
	// converges in well under this for any realistic input; the bound
	// guards against divergence on pathological ones.
	maxIterations = 100
)

// Rating is a player's skill estimate.
type Rating struct {
	Rating     float64
	Deviation  float64
	Volatility float64
}

// NewRating returns the default rating triple for an unrated player.
func NewRating() Rating {
	return Rating{
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}

// Game is one outcome within a rating period.
type Game struct {
	OpponentRating    float64
	OpponentDeviation float64
	Score             float64 // 1 win, 0.5 draw, 0 loss.
}

// SynthesizeGames turns a win/loss/draw tally into games against the fixed
// synthetic opponent, in win-draw-loss order.
func SynthesizeGames(wins, losses, draws int) []Game {
	games := make([]Game, 0, wins+losses+draws)
	for range wins {
		games = append(games, syntheticGame(1))
	}
	for range draws {
		games = append(games, syntheticGame(0.5))
	}
	for range losses {
		games = append(games, syntheticGame(0))
	}
	return games
}

func syntheticGame(score float64) Game {
	return Game{
		OpponentRating:    SyntheticOpponentRating,
		OpponentDeviation: SyntheticOpponentDeviation,
		Score:             score,
	}
}

// Update returns the rating triple after applying one rating period's games.
// An empty game list returns the input unchanged.
func Update(current Rating, games []Game) Rating {
	if len(games) == 0 {
		return current
	}

	// Step 2: convert to the Glicko-2 scale.
	mu := (current.Rating - DefaultRating) / scale
	phi := current.Deviation / scale
	sigma := current.Volatility

	// Step 3: estimated variance v, and step 4: estimated improvement delta.
	var vInv, improvement float64
	for _, game := range games {
		muJ := (game.OpponentRating - DefaultRating) / scale
		phiJ := game.OpponentDeviation / scale
		gJ := g(phiJ)
		eJ := e(mu, muJ, gJ)
		vInv += gJ * gJ * eJ * (1 - eJ)
		improvement += gJ * (game.Score - eJ)
	}
	v := 1 / vInv
	delta := v * improvement

	// Step 5: solve for the new volatility.
	sigmaPrime := solveVolatility(sigma, delta, phi, v)

	// Steps 6-7: new deviation and rating.
	phiStar := math.Sqrt(phi*phi + sigmaPrime*sigmaPrime)
	phiPrime := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	muPrime := mu + phiPrime*phiPrime*improvement

	// Step 8: convert back to the display scale.
	return Rating{
		Rating:     muPrime*scale + DefaultRating,
		Deviation:  phiPrime * scale,
		Volatility: sigmaPrime,
	}
}

// g weights an opponent's contribution down as their deviation grows.
func g(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

// e is the expected score against an opponent at muJ with weight gJ.
func e(mu, muJ, gJ float64) float64 {
	return 1 / (1 + math.Exp(-gJ*(mu-muJ)))
}

// solveVolatility finds sigma' via the Illinois variant of regula falsi, per
// the paper's step 5. Iteration is bounded so lopsided inputs (all wins, all
// losses) terminate even if the bracket converges slowly.
func solveVolatility(sigma, delta, phi, v float64) float64 {
	a := math.Log(sigma * sigma)

	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - phi*phi - v - ex)
		den := 2 * (phi*phi + v + ex) * (phi*phi + v + ex)
		return num/den - (x-a)/(tau*tau)
	}

	// Establish the initial bracket [lower, upper].
	lower := a
	var upper float64
	if delta*delta > phi*phi+v {
		upper = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k*tau) < 0 && k < float64(maxIterations) {
			k++
		}
		upper = a - k*tau
	}

	fLower := f(lower)
	fUpper := f(upper)

	for i := 0; i < maxIterations && math.Abs(upper-lower) > epsilon; i++ {
		mid := lower + (lower-upper)*fLower/(fUpper-fLower)
		fMid := f(mid)

		if fMid*fUpper <= 0 {
			lower = upper
			fLower = fUpper
		} else {
			fLower /= 2
		}

		upper = mid
		fUpper = fMid
	}

	return math.Exp(upper / 2)
}
