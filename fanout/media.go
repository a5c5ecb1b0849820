package fanout

import (
	"context"
	"slices"

	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
)

// MediaUpdated invalidates the media queries of every referenced team and event.
// Team references also reach the event-wide team media lists of the events the
// team attended in the affected years.
func MediaUpdated(ctx context.Context, lookup Lookup, refs model.Refs) ([]query.Invalidation, error) {
	years := refs.Ints("year")
	tags := refs.Ints("media_tag_enum")

	var teamKeys, eventKeys []string
	seen := map[string]struct{}{}
	for _, raw := range append(refs.Keys("references"), refs.Keys("preferred_references")...) {
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		key, err := model.ParseKey(raw)
		if err != nil {
			continue
		}
		switch key.Kind {
		case model.KindTeam:
			teamKeys = append(teamKeys, key.ID)
		case model.KindEvent:
			eventKeys = append(eventKeys, key.ID)
		}
	}
	slices.Sort(teamKeys)
	slices.Sort(eventKeys)

	var out []query.Invalidation
	for _, teamKey := range teamKeys {
		for _, year := range years {
			out = append(out, query.TeamYearMedia.Invalidate(teamKey, year))
			for _, tag := range tags {
				out = append(out, query.TeamYearTagMedias.Invalidate(teamKey, year, tag))
			}
		}
		for _, tag := range tags {
			out = append(out, query.TeamTagMedias.Invalidate(teamKey, tag))
		}
		out = append(out, query.TeamSocialMedia.Invalidate(teamKey))
	}
	for _, eventKey := range eventKeys {
		out = append(out, query.EventMedias.Invalidate(eventKey))
	}

	etKeys, err := queryKeys(ctx, lookup, model.KindEventTeam, "team", teamKeys)
	if err != nil {
		return nil, err
	}
	for _, etKey := range etKeys {
		eventKey, _, ok := model.SplitPairKey(etKey)
		if !ok || !slices.Contains(years, model.YearFromKey(eventKey)) {
			continue
		}
		out = append(out,
			query.EventTeamsMedias.Invalidate(eventKey),
			query.EventTeamsPreferredMedias.Invalidate(eventKey),
		)
	}
	return out, nil
}
