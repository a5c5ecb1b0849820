package model

import (
	"encoding/json"
	"time"
)

// Event types, as stored in EventType.
const (
	EventTypeRegional       = 0
	EventTypeDistrict       = 1
	EventTypeDistrictCMP    = 2
	EventTypeCMPDivision    = 3
	EventTypeCMPFinals      = 4
	EventTypeDistrictCMPDiv = 5
	EventTypeFOC            = 6
	EventTypeRemote         = 7
	EventTypeOffseason      = 99
	EventTypePreseason      = 100
	EventTypeUnlabeled      = -1
)

// Webcast is one decoded entry of Event.WebcastJSON.
type Webcast struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	File    string `json:"file,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Event is one competition, keyed "<year><code>".
type Event struct {
	Meta `json:"-"`

	Key         string     `json:"key"`
	Year        int        `json:"year"`
	EventShort  string     `json:"event_short"`
	Name        *string    `json:"name,omitempty"`
	ShortName   *string    `json:"short_name,omitempty"`
	EventType   *int       `json:"event_type,omitempty"`
	DistrictKey *string    `json:"district_key,omitempty"`
	ParentEvent *string    `json:"parent_event,omitempty"`
	Divisions   []string   `json:"divisions,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	City        *string    `json:"city,omitempty"`
	StateProv   *string    `json:"state_prov,omitempty"`
	Country     *string    `json:"country,omitempty"`
	Timezone    *string    `json:"timezone,omitempty"`
	Website     *string    `json:"website,omitempty"`
	Official    *bool      `json:"official,omitempty"`
	WebcastJSON *string    `json:"webcast_json,omitempty"`

	webcasts []Webcast
}

func (e *Event) Kind() Kind      { return KindEvent }
func (e *Event) KeyName() string { return e.Key }
func (e *Event) State() *Meta    { return &e.Meta }

// Webcasts decodes WebcastJSON, caching the result until the JSON changes.
func (e *Event) Webcasts() []Webcast {
	if e.webcasts == nil && e.WebcastJSON != nil {
		var out []Webcast
		if err := json.Unmarshal([]byte(*e.WebcastJSON), &out); err == nil {
			e.webcasts = out
		}
	}
	return e.webcasts
}

var EventSchema = Schema[*Event]{
	Kind: KindEvent,
	New:  func() *Event { return &Event{} },
	Fields: []Field[*Event]{
		Value("year", func(e *Event) *int { return &e.Year }),
		Value("event_short", func(e *Event) *string { return &e.EventShort }),
		Optional("name", func(e *Event) **string { return &e.Name }),
		Optional("short_name", func(e *Event) **string { return &e.ShortName }),
		Optional("event_type", func(e *Event) **int { return &e.EventType }),
		Nullable("district_key", func(e *Event) **string { return &e.DistrictKey }),
		Optional("parent_event", func(e *Event) **string { return &e.ParentEvent }),
		UnionOf("divisions", func(e *Event) *[]string { return &e.Divisions }),
		OptionalTime("start_date", func(e *Event) **time.Time { return &e.StartDate }),
		OptionalTime("end_date", func(e *Event) **time.Time { return &e.EndDate }),
		Optional("city", func(e *Event) **string { return &e.City }),
		Optional("state_prov", func(e *Event) **string { return &e.StateProv }),
		Optional("country", func(e *Event) **string { return &e.Country }),
		Optional("timezone", func(e *Event) **string { return &e.Timezone }),
		Optional("website", func(e *Event) **string { return &e.Website }),
		Optional("official", func(e *Event) **bool { return &e.Official }),
		JSONText("webcast_json", func(e *Event) **string { return &e.WebcastJSON },
			func(e *Event) { e.webcasts = nil }),
	},
	References: []Attr[*Event]{
		StringAttr("key", func(e *Event) string { return e.Key }),
		IntAttr("year", func(e *Event) int { return e.Year }),
		OptionalStringAttr("district_key", func(e *Event) *string { return e.DistrictKey }),
	},
	Indexes: []Attr[*Event]{
		OptionalStringAttr("district_key", func(e *Event) *string { return e.DistrictKey }),
		IntAttr("year", func(e *Event) int { return e.Year }),
	},
}

// EventDetails holds computed per-event data, keyed by the event key.
type EventDetails struct {
	Meta `json:"-"`

	Key             string  `json:"key"`
	AlliancesJSON   *string `json:"alliance_selections,omitempty"`
	RankingsJSON    *string `json:"rankings,omitempty"`
	PredictionsJSON *string `json:"predictions,omitempty"`
	InsightsJSON    *string `json:"insights,omitempty"`
	DistrictPoints  *string `json:"district_points,omitempty"`

	alliances []json.RawMessage
}

func (d *EventDetails) Kind() Kind      { return KindEventDetails }
func (d *EventDetails) KeyName() string { return d.Key }
func (d *EventDetails) State() *Meta    { return &d.Meta }

// Alliances decodes AlliancesJSON, caching the result until the JSON changes.
func (d *EventDetails) Alliances() []json.RawMessage {
	if d.alliances == nil && d.AlliancesJSON != nil {
		var out []json.RawMessage
		if err := json.Unmarshal([]byte(*d.AlliancesJSON), &out); err == nil {
			d.alliances = out
		}
	}
	return d.alliances
}

var EventDetailsSchema = Schema[*EventDetails]{
	Kind: KindEventDetails,
	New:  func() *EventDetails { return &EventDetails{} },
	Fields: []Field[*EventDetails]{
		JSONText("alliance_selections", func(d *EventDetails) **string { return &d.AlliancesJSON },
			func(d *EventDetails) { d.alliances = nil }),
		JSONText("rankings", func(d *EventDetails) **string { return &d.RankingsJSON }, nil),
		JSONText("predictions", func(d *EventDetails) **string { return &d.PredictionsJSON }, nil),
		JSONText("insights", func(d *EventDetails) **string { return &d.InsightsJSON }, nil),
		JSONText("district_points", func(d *EventDetails) **string { return &d.DistrictPoints }, nil),
	},
	References: []Attr[*EventDetails]{
		StringAttr("key", func(d *EventDetails) string { return d.Key }),
	},
}

// EventTeam records a team's participation in an event, keyed "<event>_<team>".
type EventTeam struct {
	Meta `json:"-"`

	Key   string `json:"key"`
	Event string `json:"event"`
	Team  string `json:"team"`
	Year  int    `json:"year"`
}

func (et *EventTeam) Kind() Kind      { return KindEventTeam }
func (et *EventTeam) KeyName() string { return et.Key }
func (et *EventTeam) State() *Meta    { return &et.Meta }

var EventTeamSchema = Schema[*EventTeam]{
	Kind: KindEventTeam,
	New:  func() *EventTeam { return &EventTeam{} },
	Fields: []Field[*EventTeam]{
		Value("event", func(et *EventTeam) *string { return &et.Event }),
		Value("team", func(et *EventTeam) *string { return &et.Team }),
		Value("year", func(et *EventTeam) *int { return &et.Year }),
	},
	References: []Attr[*EventTeam]{
		StringAttr("event", func(et *EventTeam) string { return et.Event }),
		StringAttr("team", func(et *EventTeam) string { return et.Team }),
		IntAttr("year", func(et *EventTeam) int { return et.Year }),
	},
	Indexes: []Attr[*EventTeam]{
		StringAttr("event", func(et *EventTeam) string { return et.Event }),
		StringAttr("team", func(et *EventTeam) string { return et.Team }),
	},
}
