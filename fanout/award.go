package fanout

import (
	"context"

	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
)

// AwardUpdated invalidates the event and team award lists an award appears in.
func AwardUpdated(_ context.Context, _ Lookup, refs model.Refs) ([]query.Invalidation, error) {
	eventKeys := refs.Keys("event")
	teamKeys := refs.Keys("team_list")
	years := refs.Ints("year")
	eventTypes := refs.Ints("event_type_enum")
	awardTypes := refs.Ints("award_type_enum")

	var out []query.Invalidation
	for _, eventKey := range eventKeys {
		out = append(out, query.EventAwards.Invalidate(eventKey))
		for _, teamKey := range teamKeys {
			out = append(out, query.TeamEventAwards.Invalidate(teamKey, eventKey))
		}
	}
	for _, teamKey := range teamKeys {
		out = append(out, query.TeamAwards.Invalidate(teamKey))
		for _, year := range years {
			out = append(out, query.TeamYearAwards.Invalidate(teamKey, year))
		}
		for _, eventType := range eventTypes {
			for _, awardType := range awardTypes {
				out = append(out, query.TeamEventTypeAwards.Invalidate(teamKey, eventType, awardType))
			}
		}
	}
	return out, nil
}
