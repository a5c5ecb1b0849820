package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind names an entity kind. It doubles as the first segment of a typed Key.
type Kind string

const (
	KindTeam         Kind = "Team"
	KindEvent        Kind = "Event"
	KindEventDetails Kind = "EventDetails"
	KindMatch        Kind = "Match"
	KindAward        Kind = "Award"
	KindMedia        Kind = "Media"
	KindDistrict     Kind = "District"
	KindDistrictTeam Kind = "DistrictTeam"
	KindEventTeam    Kind = "EventTeam"
	KindRobot        Kind = "Robot"
	KindInsight      Kind = "Insight"
)

// Kinds returns every writable kind.
func Kinds() []Kind {
	return []Kind{
		KindTeam, KindEvent, KindEventDetails, KindMatch, KindAward, KindMedia,
		KindDistrict, KindDistrictTeam, KindEventTeam, KindRobot, KindInsight,
	}
}

// Key is a kind-qualified entity key. Media references use it because a single
// reference list can point at teams and events.
type Key struct {
	Kind Kind
	ID   string
}

// NewKey builds a Key.
func NewKey(kind Kind, id string) Key {
	return Key{Kind: kind, ID: id}
}

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool {
	return k.Kind == "" && k.ID == ""
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.ID
}

// ParseKey parses the output of Key.String.
func ParseKey(s string) (Key, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || kind == "" || id == "" {
		return Key{}, fmt.Errorf("model: malformed key %q", s)
	}
	return Key{Kind: Kind(kind), ID: id}, nil
}

// EventTeamKeyName returns the key of the EventTeam joining event and team.
func EventTeamKeyName(eventKey, teamKey string) string {
	return eventKey + "_" + teamKey
}

// DistrictTeamKeyName returns the key of the DistrictTeam joining district and team.
func DistrictTeamKeyName(districtKey, teamKey string) string {
	return districtKey + "_" + teamKey
}

// SplitPairKey splits an EventTeam or DistrictTeam key into its two halves.
func SplitPairKey(key string) (string, string, bool) {
	left, right, ok := strings.Cut(key, "_")
	if !ok || left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

// YearFromKey reads the leading four-digit season from event, district and
// pair keys ("2024necmp", "2024ne_frc254"). It returns 0 when absent.
func YearFromKey(key string) int {
	if len(key) < 4 {
		return 0
	}
	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0
	}
	return year
}

// TeamNumber returns the number of a "frcNNNN" team key, or 0.
func TeamNumber(teamKey string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(teamKey, "frc"))
	if err != nil {
		return 0
	}
	return n
}
