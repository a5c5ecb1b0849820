package fanout

import (
	"context"

	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
)

// MatchUpdated invalidates the match, its event's match list, and the match
// lists of every team that played in it.
func MatchUpdated(_ context.Context, _ Lookup, refs model.Refs) ([]query.Invalidation, error) {
	matchKeys := refs.Keys("key")
	eventKeys := refs.Keys("event")
	teamKeys := refs.Keys("team_keys")
	years := refs.Ints("year")

	var out []query.Invalidation
	for _, matchKey := range matchKeys {
		out = append(out, query.Match.Invalidate(matchKey))
	}
	for _, eventKey := range eventKeys {
		out = append(out, query.EventMatches.Invalidate(eventKey))
		for _, teamKey := range teamKeys {
			out = append(out, query.TeamEventMatches.Invalidate(teamKey, eventKey))
		}
	}
	for _, teamKey := range teamKeys {
		for _, year := range years {
			out = append(out, query.TeamYearMatches.Invalidate(teamKey, year))
		}
	}
	return out, nil
}
