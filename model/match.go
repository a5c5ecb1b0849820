package model

import (
	"encoding/json"
	"time"
)

// Match is one played or scheduled match, keyed "<event>_<comp level><set>m<number>".
type Match struct {
	Meta `json:"-"`

	Key                string     `json:"key"`
	Event              string     `json:"event"`
	Year               int        `json:"year"`
	CompLevel          string     `json:"comp_level"`
	SetNumber          int        `json:"set_number"`
	MatchNumber        int        `json:"match_number"`
	TeamKeyNames       []string   `json:"team_key_names,omitempty"`
	AlliancesJSON      *string    `json:"alliances_json,omitempty"`
	ScoreBreakdownJSON *string    `json:"score_breakdown_json,omitempty"`
	Time               *time.Time `json:"time,omitempty"`
	ActualTime         *time.Time `json:"actual_time,omitempty"`
	PredictedTime      *time.Time `json:"predicted_time,omitempty"`
	PostResultTime     *time.Time `json:"post_result_time,omitempty"`
	YoutubeVideos      []string   `json:"youtube_videos,omitempty"`
	TBAVideos          []string   `json:"tba_videos,omitempty"`
	PushSent           *bool      `json:"push_sent,omitempty"`
	TiebreakMatchKey   *string    `json:"tiebreak_match_key,omitempty"`

	alliances map[string]json.RawMessage
}

func (m *Match) Kind() Kind      { return KindMatch }
func (m *Match) KeyName() string { return m.Key }
func (m *Match) State() *Meta    { return &m.Meta }

// Alliances decodes AlliancesJSON, caching the result until the JSON changes.
func (m *Match) Alliances() map[string]json.RawMessage {
	if m.alliances == nil && m.AlliancesJSON != nil {
		var out map[string]json.RawMessage
		if err := json.Unmarshal([]byte(*m.AlliancesJSON), &out); err == nil {
			m.alliances = out
		}
	}
	return m.alliances
}

var MatchSchema = Schema[*Match]{
	Kind: KindMatch,
	New:  func() *Match { return &Match{} },
	Fields: []Field[*Match]{
		Value("comp_level", func(m *Match) *string { return &m.CompLevel }),
		Value("set_number", func(m *Match) *int { return &m.SetNumber }),
		Value("match_number", func(m *Match) *int { return &m.MatchNumber }),
		ListOf("team_key_names", func(m *Match) *[]string { return &m.TeamKeyNames }),
		JSONText("alliances_json", func(m *Match) **string { return &m.AlliancesJSON },
			func(m *Match) { m.alliances = nil }),
		JSONText("score_breakdown_json", func(m *Match) **string { return &m.ScoreBreakdownJSON }, nil),
		OptionalTime("time", func(m *Match) **time.Time { return &m.Time }),
		OptionalTime("actual_time", func(m *Match) **time.Time { return &m.ActualTime }),
		OptionalTime("predicted_time", func(m *Match) **time.Time { return &m.PredictedTime }),
		OptionalTime("post_result_time", func(m *Match) **time.Time { return &m.PostResultTime }),
		UnionOf("youtube_videos", func(m *Match) *[]string { return &m.YoutubeVideos }),
		UnionOf("tba_videos", func(m *Match) *[]string { return &m.TBAVideos }),
		Optional("push_sent", func(m *Match) **bool { return &m.PushSent }),
		Nullable("tiebreak_match_key", func(m *Match) **string { return &m.TiebreakMatchKey }),
	},
	References: []Attr[*Match]{
		StringAttr("key", func(m *Match) string { return m.Key }),
		StringAttr("event", func(m *Match) string { return m.Event }),
		StringsAttr("team_keys", func(m *Match) []string { return m.TeamKeyNames }),
		IntAttr("year", func(m *Match) int { return m.Year }),
	},
	Indexes: []Attr[*Match]{
		StringAttr("event", func(m *Match) string { return m.Event }),
	},
}
