package pairing

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler computes and caches rotation schedules. The cache is keyed by
// (format, sorted roster, court count) so that repeated lookups for the same
// event see the same randomized player-to-position mapping; it lives until
// ClearCache or Forget. A Scheduler is safe for concurrent use: a first-lookup
// race at worst recomputes a key, and entries are only ever replaced whole.
type Scheduler struct {
	mu    sync.RWMutex
	cache map[string][]Round

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRand substitutes the random source used for the per-key roster shuffle
// and rotation offset. Tests pass a seeded source for reproducible schedules.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Scheduler) {
		s.rnd = rnd
	}
}

// New returns a Scheduler with an empty cache and a time-seeded random source.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		cache: make(map[string][]Round),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompleteSchedule returns the full schedule for the roster, with each
// round's match list truncated to maxCourts and resting players recomputed
// against the truncated list. The first call for a key shuffles the roster
// onto positions; later calls return the cached rounds unchanged.
//
// Unsupported combinations (see ErrUnsupported) yield an empty slice and the
// sentinel rather than a panic or a partial schedule.
func (s *Scheduler) CompleteSchedule(roster []string, format Format, maxCourts int) ([]Round, error) {
	if !format.Valid() || maxCourts < 1 {
		return nil, ErrUnsupported
	}

	key := cacheKey(roster, format, maxCourts)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cloneRounds(cached), nil
	}

	rounds := s.generate(roster, format, maxCourts)
	if len(rounds) == 0 {
		return nil, ErrUnsupported
	}

	s.mu.Lock()
	s.cache[key] = rounds
	s.mu.Unlock()

	log.Debug().
		Str("component", "pairing").
		Str("format", string(format)).
		Int("roster_size", len(roster)).
		Int("max_courts", maxCourts).
		Int("rounds", len(rounds)).
		Msg("Generated rotation schedule")

	return cloneRounds(rounds), nil
}

// Round returns the 1-based roundNumber entry of the roster's schedule. Round
// numbers past the end cycle back modularly, so progression through an event
// never runs out: once every unique round has been played the schedule
// repeats in the same player-to-position mapping. Unsupported combinations
// return an empty round with the whole roster resting plus ErrUnsupported.
func (s *Scheduler) Round(roster []string, format Format, roundNumber, maxCourts int) (Round, error) {
	rounds, err := s.CompleteSchedule(roster, format, maxCourts)
	if len(rounds) == 0 {
		return Round{
			Number:  roundNumber,
			Matches: []Match{},
			Resting: sortedCopy(roster),
		}, err
	}

	idx := (roundNumber - 1) % len(rounds)
	if idx < 0 {
		idx += len(rounds)
	}
	return rounds[idx], nil
}

// NextRound is a compatibility wrapper that infers the target round number as
// len(history)+1. The inference assumes exactly one recorded round per prior
// call; callers that can track round numbers explicitly should call Round.
func (s *Scheduler) NextRound(roster []string, format Format, history []Round, maxCourts int) (Round, error) {
	return s.Round(roster, format, len(history)+1, maxCourts)
}

// Forget drops the cached schedule for one roster/format/court combination,
// forcing re-randomization on the next lookup. Use it when a single event
// starts a new cycle without disturbing other cached schedules.
func (s *Scheduler) Forget(roster []string, format Format, maxCourts int) {
	key := cacheKey(roster, format, maxCourts)
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}

// ClearCache drops every cached schedule. Subsequent lookups recompute with
// fresh randomization. Do not call mid-event if callers depend on a stable
// schedule.
func (s *Scheduler) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string][]Round)
	s.mu.Unlock()
}

func (s *Scheduler) generate(roster []string, format Format, maxCourts int) []Round {
	s.rndMu.Lock()
	offset := 0
	if len(roster) > 0 {
		offset = s.rnd.Intn(len(roster))
	}
	mapping := shuffledCopy(s.rnd, roster)
	s.rndMu.Unlock()

	var positionRounds [][]positionMatch
	switch format {
	case FormatDoubles:
		positionRounds = doublesRounds(len(roster), offset)
	case FormatSingles:
		positionRounds = singlesRounds(len(roster))
	}
	if len(positionRounds) == 0 {
		return nil
	}

	sorted := sortedCopy(roster)
	rounds := make([]Round, 0, len(positionRounds))
	for i, roundMatches := range positionRounds {
		if len(roundMatches) > maxCourts {
			roundMatches = roundMatches[:maxCourts]
		}

		playing := make(map[string]bool, len(roster))
		matches := make([]Match, 0, len(roundMatches))
		for _, pm := range roundMatches {
			match := Match{
				SideA: mapPositions(mapping, pm.sideA),
				SideB: mapPositions(mapping, pm.sideB),
			}
			for _, player := range match.Players() {
				playing[player] = true
			}
			matches = append(matches, match)
		}

		resting := make([]string, 0, len(roster)-len(playing))
		for _, player := range sorted {
			if !playing[player] {
				resting = append(resting, player)
			}
		}

		rounds = append(rounds, Round{
			Number:  i + 1,
			Matches: matches,
			Resting: resting,
		})
	}
	return rounds
}

func mapPositions(mapping []string, positions []int) []string {
	side := make([]string, 0, len(positions))
	for _, pos := range positions {
		side = append(side, mapping[pos])
	}
	return side
}

func cacheKey(roster []string, format Format, maxCourts int) string {
	return fmt.Sprintf("%s|%s|%d", format, strings.Join(sortedCopy(roster), ","), maxCourts)
}

func sortedCopy(roster []string) []string {
	out := make([]string, len(roster))
	copy(out, roster)
	sort.Strings(out)
	return out
}

func cloneRounds(rounds []Round) []Round {
	out := make([]Round, len(rounds))
	for i, round := range rounds {
		matches := make([]Match, len(round.Matches))
		for j, match := range round.Matches {
			matches[j] = Match{
				SideA: append([]string(nil), match.SideA...),
				SideB: append([]string(nil), match.SideB...),
			}
		}
		out[i] = Round{
			Number:  round.Number,
			Matches: matches,
			Resting: append([]string(nil), round.Resting...),
		}
	}
	return out
}
