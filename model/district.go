package model

// District is one season of a district, keyed "<year><abbreviation>".
type District struct {
	Meta `json:"-"`

	Key             string  `json:"key"`
	Year            int     `json:"year"`
	Abbreviation    string  `json:"abbreviation"`
	DisplayName     *string `json:"display_name,omitempty"`
	Website         *string `json:"website,omitempty"`
	RankingsJSON    *string `json:"rankings,omitempty"`
	AdvancementJSON *string `json:"advancement,omitempty"`
}

func (d *District) Kind() Kind      { return KindDistrict }
func (d *District) KeyName() string { return d.Key }
func (d *District) State() *Meta    { return &d.Meta }

var DistrictSchema = Schema[*District]{
	Kind: KindDistrict,
	New:  func() *District { return &District{} },
	Fields: []Field[*District]{
		Value("year", func(d *District) *int { return &d.Year }),
		Value("abbreviation", func(d *District) *string { return &d.Abbreviation }),
		Optional("display_name", func(d *District) **string { return &d.DisplayName }),
		Nullable("website", func(d *District) **string { return &d.Website }),
		JSONText("rankings", func(d *District) **string { return &d.RankingsJSON }, nil),
		JSONText("advancement", func(d *District) **string { return &d.AdvancementJSON }, nil),
	},
	References: []Attr[*District]{
		StringAttr("key", func(d *District) string { return d.Key }),
		IntAttr("year", func(d *District) int { return d.Year }),
		StringAttr("abbreviation", func(d *District) string { return d.Abbreviation }),
	},
}

// DistrictTeam records a team's membership in a district, keyed "<district>_<team>".
type DistrictTeam struct {
	Meta `json:"-"`

	Key         string `json:"key"`
	DistrictKey string `json:"district_key"`
	Team        string `json:"team"`
	Year        int    `json:"year"`
}

func (dt *DistrictTeam) Kind() Kind      { return KindDistrictTeam }
func (dt *DistrictTeam) KeyName() string { return dt.Key }
func (dt *DistrictTeam) State() *Meta    { return &dt.Meta }

var DistrictTeamSchema = Schema[*DistrictTeam]{
	Kind: KindDistrictTeam,
	New:  func() *DistrictTeam { return &DistrictTeam{} },
	Fields: []Field[*DistrictTeam]{
		Value("district_key", func(dt *DistrictTeam) *string { return &dt.DistrictKey }),
		Value("team", func(dt *DistrictTeam) *string { return &dt.Team }),
		Value("year", func(dt *DistrictTeam) *int { return &dt.Year }),
	},
	References: []Attr[*DistrictTeam]{
		StringAttr("district_key", func(dt *DistrictTeam) string { return dt.DistrictKey }),
		StringAttr("team", func(dt *DistrictTeam) string { return dt.Team }),
		IntAttr("year", func(dt *DistrictTeam) int { return dt.Year }),
	},
	Indexes: []Attr[*DistrictTeam]{
		StringAttr("district_key", func(dt *DistrictTeam) string { return dt.DistrictKey }),
		StringAttr("team", func(dt *DistrictTeam) string { return dt.Team }),
	},
}

// Insight is a season-wide computed statistic, keyed "<year>_<name>".
type Insight struct {
	Meta `json:"-"`

	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Year     int     `json:"year"`
	DataJSON *string `json:"data_json,omitempty"`
}

func (i *Insight) Kind() Kind      { return KindInsight }
func (i *Insight) KeyName() string { return i.Key }
func (i *Insight) State() *Meta    { return &i.Meta }

var InsightSchema = Schema[*Insight]{
	Kind: KindInsight,
	New:  func() *Insight { return &Insight{} },
	Fields: []Field[*Insight]{
		JSONText("data_json", func(i *Insight) **string { return &i.DataJSON }, nil),
	},
	References: []Attr[*Insight]{
		IntAttr("year", func(i *Insight) int { return i.Year }),
	},
}
