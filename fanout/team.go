package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
)

// TeamUpdated invalidates the team, its list page, and the event and district
// team lists the team belongs to.
func TeamUpdated(ctx context.Context, lookup Lookup, refs model.Refs) ([]query.Invalidation, error) {
	teamKeys := refs.Keys("key")

	var out []query.Invalidation
	for _, teamKey := range teamKeys {
		out = append(out,
			query.Team.Invalidate(teamKey),
			query.TeamList.Invalidate(model.TeamPage(teamKey)),
		)
	}
	if len(teamKeys) == 0 {
		return out, nil
	}

	var etKeys, dtKeys []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keys, err := queryKeys(gctx, lookup, model.KindEventTeam, "team", teamKeys)
		etKeys = keys
		return err
	})
	g.Go(func() error {
		keys, err := queryKeys(gctx, lookup, model.KindDistrictTeam, "team", teamKeys)
		dtKeys = keys
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, etKey := range etKeys {
		eventKey, teamKey, ok := model.SplitPairKey(etKey)
		if !ok {
			continue
		}
		if year := model.YearFromKey(eventKey); year != 0 {
			out = append(out, query.TeamListYear.Invalidate(year, model.TeamPage(teamKey)))
		}
		out = append(out,
			query.EventTeams.Invalidate(eventKey),
			query.EventEventTeams.Invalidate(eventKey),
		)
	}
	for _, dtKey := range dtKeys {
		districtKey, _, ok := model.SplitPairKey(dtKey)
		if !ok {
			continue
		}
		out = append(out, query.DistrictTeams.Invalidate(districtKey))
	}
	return out, nil
}

// RobotUpdated invalidates the robot list of each owning team.
func RobotUpdated(_ context.Context, _ Lookup, refs model.Refs) ([]query.Invalidation, error) {
	var out []query.Invalidation
	for _, teamKey := range refs.Keys("team") {
		out = append(out, query.TeamRobots.Invalidate(teamKey))
	}
	return out, nil
}
