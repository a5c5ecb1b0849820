package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
)

// DistrictUpdated invalidates the district's own queries and the district lists
// of its teams, then runs EventUpdated for every event in the district.
func DistrictUpdated(ctx context.Context, lookup Lookup, refs model.Refs) ([]query.Invalidation, error) {
	districtKeys := refs.Keys("key")
	years := refs.Ints("year")
	abbreviations := refs.Keys("abbreviation")

	var out []query.Invalidation
	for _, year := range years {
		out = append(out, query.DistrictsInYear.Invalidate(year))
	}
	for _, abbrev := range abbreviations {
		out = append(out, query.DistrictHistory.Invalidate(abbrev))
	}
	for _, districtKey := range districtKeys {
		out = append(out, query.District.Invalidate(districtKey))
	}
	if len(districtKeys) == 0 {
		return out, nil
	}

	var dtKeys, eventKeys []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keys, err := queryKeys(gctx, lookup, model.KindDistrictTeam, "district_key", districtKeys)
		dtKeys = keys
		return err
	})
	g.Go(func() error {
		keys, err := queryKeys(gctx, lookup, model.KindEvent, "district_key", districtKeys)
		eventKeys = keys
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, dtKey := range dtKeys {
		if _, teamKey, ok := model.SplitPairKey(dtKey); ok {
			out = append(out, query.TeamDistricts.Invalidate(teamKey))
		}
	}

	eventRefs := model.NewRefs("key", "year", "district_key")
	eventRefs.Add("district_key", districtKeys...)
	for _, eventKey := range eventKeys {
		eventRefs.Add("key", eventKey)
		eventRefs.AddInts("year", model.YearFromKey(eventKey))
	}
	events, err := EventUpdated(ctx, lookup, eventRefs)
	if err != nil {
		return nil, err
	}
	return append(out, events...), nil
}

// DistrictTeamUpdated invalidates the district's team list and the team's
// district history.
func DistrictTeamUpdated(_ context.Context, _ Lookup, refs model.Refs) ([]query.Invalidation, error) {
	var out []query.Invalidation
	for _, districtKey := range refs.Keys("district_key") {
		out = append(out, query.DistrictTeams.Invalidate(districtKey))
	}
	for _, teamKey := range refs.Keys("team") {
		out = append(out, query.TeamDistricts.Invalidate(teamKey))
	}
	return out, nil
}

// InsightUpdated invalidates the season insight pages.
func InsightUpdated(_ context.Context, _ Lookup, refs model.Refs) ([]query.Invalidation, error) {
	var out []query.Invalidation
	for _, year := range refs.Ints("year") {
		out = append(out,
			query.InsightsLeaderboardsYear.Invalidate(year),
			query.InsightsNotablesYear.Invalidate(year),
		)
	}
	return out, nil
}
