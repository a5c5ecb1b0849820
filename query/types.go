package query

// Award queries.
var (
	EventAwards         = &Type{Name: "event_awards", Params: []string{"event_key"}, Version: 6}
	TeamAwards          = &Type{Name: "team_awards", Params: []string{"team_key"}, Version: 5}
	TeamEventAwards     = &Type{Name: "team_event_awards", Params: []string{"team_key", "event_key"}, Version: 5}
	TeamYearAwards      = &Type{Name: "team_year_awards", Params: []string{"team_key", "year"}, Version: 5}
	TeamEventTypeAwards = &Type{Name: "team_event_type_awards", Params: []string{"team_key", "event_type", "award_type"}, Version: 2}
)

// Event queries.
var (
	Event                          = &Type{Name: "event", Params: []string{"event_key"}, Version: 7}
	EventDivisions                 = &Type{Name: "event_divisions", Params: []string{"event_key"}, Version: 2}
	EventList                      = &Type{Name: "event_list", Params: []string{"year"}, Version: 7}
	RegionalEvents                 = &Type{Name: "regional_events", Params: []string{"year"}, Version: 2}
	ChampionshipEventsAndDivisions = &Type{Name: "championship_events_and_divisions", Params: []string{"year"}, Version: 2}
	DistrictEvents                 = &Type{Name: "district_events", Params: []string{"district_key"}, Version: 8}
	TeamEvents                     = &Type{Name: "team_events", Params: []string{"team_key"}, Version: 6}
	TeamYearEvents                 = &Type{Name: "team_year_events", Params: []string{"team_key", "year"}, Version: 6}
	TeamYearEventTeams             = &Type{Name: "team_year_eventteams", Params: []string{"team_key", "year"}, Version: 3}
)

// EventDetails queries.
var EventDetails = &Type{Name: "event_details", Params: []string{"event_key"}, Version: 2}

// Match queries.
var (
	Match            = &Type{Name: "match", Params: []string{"match_key"}, Version: 4}
	EventMatches     = &Type{Name: "event_matches", Params: []string{"event_key"}, Version: 4}
	TeamEventMatches = &Type{Name: "team_event_matches", Params: []string{"team_key", "event_key"}, Version: 4}
	TeamYearMatches  = &Type{Name: "team_year_matches", Params: []string{"team_key", "year"}, Version: 4}
)

// Media queries.
var (
	TeamSocialMedia           = &Type{Name: "team_social_media", Params: []string{"team_key"}, Version: 3}
	TeamYearMedia             = &Type{Name: "team_year_media", Params: []string{"team_key", "year"}, Version: 3}
	TeamTagMedias             = &Type{Name: "team_tag_medias", Params: []string{"team_key", "media_tag"}, Version: 1}
	TeamYearTagMedias         = &Type{Name: "team_year_tag_medias", Params: []string{"team_key", "year", "media_tag"}, Version: 1}
	EventMedias               = &Type{Name: "event_medias", Params: []string{"event_key"}, Version: 1}
	EventTeamsMedias          = &Type{Name: "event_teams_medias", Params: []string{"event_key"}, Version: 1}
	EventTeamsPreferredMedias = &Type{Name: "event_teams_preferred_medias", Params: []string{"event_key"}, Version: 1}
)

// Robot queries.
var TeamRobots = &Type{Name: "team_robots", Params: []string{"team_key"}, Version: 2}

// Team queries.
var (
	Team              = &Type{Name: "team", Params: []string{"team_key"}, Version: 3}
	TeamList          = &Type{Name: "team_list", Params: []string{"page"}, Version: 3}
	TeamListYear      = &Type{Name: "team_list_year", Params: []string{"year", "page"}, Version: 3}
	TeamParticipation = &Type{Name: "team_participation", Params: []string{"team_key"}, Version: 2}
	EventTeams        = &Type{Name: "event_teams", Params: []string{"event_key"}, Version: 3}
	EventEventTeams   = &Type{Name: "event_eventteams", Params: []string{"event_key"}, Version: 3}
	DistrictTeams     = &Type{Name: "district_teams", Params: []string{"district_key"}, Version: 4}
)

// District queries.
var (
	District        = &Type{Name: "district", Params: []string{"district_key"}, Version: 3}
	DistrictsInYear = &Type{Name: "districts_in_year", Params: []string{"year"}, Version: 4}
	DistrictHistory = &Type{Name: "district_history", Params: []string{"abbreviation"}, Version: 3}
	TeamDistricts   = &Type{Name: "team_districts", Params: []string{"team_key"}, Version: 3}
)

// Insight queries.
var (
	InsightsLeaderboardsYear = &Type{Name: "insights_leaderboards", Params: []string{"year"}, Version: 1}
	InsightsNotablesYear     = &Type{Name: "insights_notables", Params: []string{"year"}, Version: 1}
)

// All lists every registered query type.
func All() []*Type {
	return []*Type{
		EventAwards, TeamAwards, TeamEventAwards, TeamYearAwards, TeamEventTypeAwards,
		Event, EventDivisions, EventList, RegionalEvents, ChampionshipEventsAndDivisions,
		DistrictEvents, TeamEvents, TeamYearEvents, TeamYearEventTeams,
		EventDetails,
		Match, EventMatches, TeamEventMatches, TeamYearMatches,
		TeamSocialMedia, TeamYearMedia, TeamTagMedias, TeamYearTagMedias,
		EventMedias, EventTeamsMedias, EventTeamsPreferredMedias,
		TeamRobots,
		Team, TeamList, TeamListYear, TeamParticipation, EventTeams, EventEventTeams, DistrictTeams,
		District, DistrictsInYear, DistrictHistory, TeamDistricts,
		InsightsLeaderboardsYear, InsightsNotablesYear,
	}
}
