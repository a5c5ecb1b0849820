package model

// TeamsPerPage is the page size of the paginated team list queries.
const TeamsPerPage = 500

// Team is an FRC team, keyed "frc<number>".
type Team struct {
	Meta `json:"-"`

	Key        string  `json:"key"`
	TeamNumber int     `json:"team_number"`
	Nickname   *string `json:"nickname,omitempty"`
	Name       *string `json:"name,omitempty"`
	SchoolName *string `json:"school_name,omitempty"`
	City       *string `json:"city,omitempty"`
	StateProv  *string `json:"state_prov,omitempty"`
	Country    *string `json:"country,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Website    *string `json:"website,omitempty"`
	RookieYear *int    `json:"rookie_year,omitempty"`
	Motto      *string `json:"motto,omitempty"`
}

func (t *Team) Kind() Kind      { return KindTeam }
func (t *Team) KeyName() string { return t.Key }
func (t *Team) State() *Meta    { return &t.Meta }

// TeamPage returns the team list page a team key falls on.
func TeamPage(teamKey string) int {
	return TeamNumber(teamKey) / TeamsPerPage
}

var TeamSchema = Schema[*Team]{
	Kind: KindTeam,
	New:  func() *Team { return &Team{} },
	Fields: []Field[*Team]{
		Value("team_number", func(t *Team) *int { return &t.TeamNumber }),
		Optional("nickname", func(t *Team) **string { return &t.Nickname }),
		Optional("name", func(t *Team) **string { return &t.Name }),
		Optional("school_name", func(t *Team) **string { return &t.SchoolName }),
		Optional("city", func(t *Team) **string { return &t.City }),
		Optional("state_prov", func(t *Team) **string { return &t.StateProv }),
		Optional("country", func(t *Team) **string { return &t.Country }),
		Optional("postal_code", func(t *Team) **string { return &t.PostalCode }),
		Nullable("website", func(t *Team) **string { return &t.Website }),
		Optional("rookie_year", func(t *Team) **int { return &t.RookieYear }),
		Nullable("motto", func(t *Team) **string { return &t.Motto }),
	},
	References: []Attr[*Team]{
		StringAttr("key", func(t *Team) string { return t.Key }),
	},
}

// Robot is a team's named robot for one season, keyed "<team>_<year>".
type Robot struct {
	Meta `json:"-"`

	Key       string  `json:"key"`
	Team      string  `json:"team"`
	Year      int     `json:"year"`
	RobotName *string `json:"robot_name,omitempty"`
}

func (r *Robot) Kind() Kind      { return KindRobot }
func (r *Robot) KeyName() string { return r.Key }
func (r *Robot) State() *Meta    { return &r.Meta }

var RobotSchema = Schema[*Robot]{
	Kind: KindRobot,
	New:  func() *Robot { return &Robot{} },
	Fields: []Field[*Robot]{
		Optional("robot_name", func(r *Robot) **string { return &r.RobotName }),
	},
	References: []Attr[*Robot]{
		StringAttr("team", func(r *Robot) string { return r.Team }),
	},
	Indexes: []Attr[*Robot]{
		StringAttr("team", func(r *Robot) string { return r.Team }),
	},
}
