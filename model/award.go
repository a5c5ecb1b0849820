package model

// Award is one award given at an event, keyed "<event>_<award type>".
type Award struct {
	Meta `json:"-"`

	Key               string   `json:"key"`
	Event             string   `json:"event"`
	Year              int      `json:"year"`
	EventType         int      `json:"event_type_enum"`
	AwardType         int      `json:"award_type_enum"`
	Name              *string  `json:"name_str,omitempty"`
	TeamList          []string `json:"team_list,omitempty"`
	RecipientJSONList []string `json:"recipient_json_list,omitempty"`
}

func (a *Award) Kind() Kind      { return KindAward }
func (a *Award) KeyName() string { return a.Key }
func (a *Award) State() *Meta    { return &a.Meta }

var AwardSchema = Schema[*Award]{
	Kind: KindAward,
	New:  func() *Award { return &Award{} },
	Fields: []Field[*Award]{
		Optional("name_str", func(a *Award) **string { return &a.Name }),
		UnionOf("team_list", func(a *Award) *[]string { return &a.TeamList }),
		UnionOf("recipient_json_list", func(a *Award) *[]string { return &a.RecipientJSONList }),
	},
	References: []Attr[*Award]{
		StringAttr("event", func(a *Award) string { return a.Event }),
		StringsAttr("team_list", func(a *Award) []string { return a.TeamList }),
		IntAttr("year", func(a *Award) int { return a.Year }),
		IntAttr("event_type_enum", func(a *Award) int { return a.EventType }),
		IntAttr("award_type_enum", func(a *Award) int { return a.AwardType }),
	},
	Indexes: []Attr[*Award]{
		StringAttr("event", func(a *Award) string { return a.Event }),
		StringsAttr("team_list", func(a *Award) []string { return a.TeamList }),
	},
}
