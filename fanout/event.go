package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
)

// EventUpdated invalidates an event's own queries, the season lists it appears
// in, its district's event list, the team-facing event queries of every team
// attending, and the divisions list of its parent event.
func EventUpdated(ctx context.Context, lookup Lookup, refs model.Refs) ([]query.Invalidation, error) {
	eventKeys := refs.Keys("key")
	years := refs.Ints("year")
	districtKeys := refs.Keys("district_key")

	var out []query.Invalidation
	for _, eventKey := range eventKeys {
		out = append(out,
			query.Event.Invalidate(eventKey),
			query.EventDivisions.Invalidate(eventKey),
		)
	}
	for _, year := range years {
		out = append(out,
			query.EventList.Invalidate(year),
			query.RegionalEvents.Invalidate(year),
			query.ChampionshipEventsAndDivisions.Invalidate(year),
		)
	}
	for _, districtKey := range districtKeys {
		out = append(out, query.DistrictEvents.Invalidate(districtKey))
	}
	if len(eventKeys) == 0 {
		return out, nil
	}

	var (
		eventTeamKeys []string
		parentKeys    []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keys, err := queryKeys(gctx, lookup, model.KindEventTeam, "event", eventKeys)
		eventTeamKeys = keys
		return err
	})
	g.Go(func() error {
		keys, err := parentEvents(gctx, lookup, eventKeys)
		parentKeys = keys
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, etKey := range eventTeamKeys {
		eventKey, teamKey, ok := model.SplitPairKey(etKey)
		if !ok {
			continue
		}
		year := model.YearFromKey(eventKey)
		out = append(out, query.TeamEvents.Invalidate(teamKey))
		if year != 0 {
			out = append(out,
				query.TeamYearEvents.Invalidate(teamKey, year),
				query.TeamYearEventTeams.Invalidate(teamKey, year),
			)
		}
	}
	for _, parentKey := range parentKeys {
		out = append(out, query.EventDivisions.Invalidate(parentKey))
	}
	return out, nil
}

// parentEvents reads the events and returns their distinct parent keys. It looks
// one level up only.
func parentEvents(ctx context.Context, lookup Lookup, eventKeys []string) ([]string, error) {
	docs, err := lookup.GetMulti(ctx, model.KindEvent, eventKeys)
	if err != nil {
		return nil, lookupFailed(err, model.KindEvent, "key")
	}
	seen := map[string]struct{}{}
	var out []string
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		event, err := datastore.Decode(model.EventSchema, doc)
		if err != nil {
			return nil, err
		}
		if event.ParentEvent == nil || *event.ParentEvent == "" {
			continue
		}
		if _, ok := seen[*event.ParentEvent]; ok {
			continue
		}
		seen[*event.ParentEvent] = struct{}{}
		out = append(out, *event.ParentEvent)
	}
	return out, nil
}

// EventDetailsUpdated invalidates the details query and the per-team season
// summaries that embed event status.
func EventDetailsUpdated(ctx context.Context, lookup Lookup, refs model.Refs) ([]query.Invalidation, error) {
	eventKeys := refs.Keys("key")

	var out []query.Invalidation
	for _, eventKey := range eventKeys {
		out = append(out, query.EventDetails.Invalidate(eventKey))
	}

	etKeys, err := queryKeys(ctx, lookup, model.KindEventTeam, "event", eventKeys)
	if err != nil {
		return nil, err
	}
	for _, etKey := range etKeys {
		eventKey, teamKey, ok := model.SplitPairKey(etKey)
		if !ok {
			continue
		}
		if year := model.YearFromKey(eventKey); year != 0 {
			out = append(out, query.TeamYearEventTeams.Invalidate(teamKey, year))
		}
	}
	return out, nil
}

// EventTeamUpdated invalidates the participation queries on both sides of the pair.
func EventTeamUpdated(_ context.Context, _ Lookup, refs model.Refs) ([]query.Invalidation, error) {
	eventKeys := refs.Keys("event")
	teamKeys := refs.Keys("team")
	years := refs.Ints("year")

	var out []query.Invalidation
	for _, teamKey := range teamKeys {
		out = append(out,
			query.TeamEvents.Invalidate(teamKey),
			query.TeamParticipation.Invalidate(teamKey),
		)
		page := model.TeamPage(teamKey)
		for _, year := range years {
			out = append(out,
				query.TeamListYear.Invalidate(year, page),
				query.TeamYearEvents.Invalidate(teamKey, year),
				query.TeamYearEventTeams.Invalidate(teamKey, year),
			)
		}
	}
	for _, eventKey := range eventKeys {
		out = append(out,
			query.EventTeams.Invalidate(eventKey),
			query.EventEventTeams.Invalidate(eventKey),
			query.EventTeamsMedias.Invalidate(eventKey),
			query.EventTeamsPreferredMedias.Invalidate(eventKey),
		)
	}
	return out, nil
}
