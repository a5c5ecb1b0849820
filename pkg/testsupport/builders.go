package testsupport

import (
	"fmt"

	"github.com/goliatone/go-tba-cache/model"
)

// Ptr returns a pointer to v.
func Ptr[V any](v V) *V {
	return &v
}

// Team builds a team with the canonical key for number.
func Team(number int) *model.Team {
	return &model.Team{Key: fmt.Sprintf("frc%d", number), TeamNumber: number}
}

// Event builds an event keyed year+code.
func Event(year int, code string) *model.Event {
	return &model.Event{Key: fmt.Sprintf("%d%s", year, code), Year: year, EventShort: code}
}

// DistrictEvent builds an event that belongs to districtKey.
func DistrictEvent(year int, code, districtKey string) *model.Event {
	e := Event(year, code)
	e.EventType = Ptr(model.EventTypeDistrict)
	e.DistrictKey = Ptr(districtKey)
	return e
}

// EventTeam joins team to event.
func EventTeam(eventKey, teamKey string) *model.EventTeam {
	return &model.EventTeam{
		Key:   model.EventTeamKeyName(eventKey, teamKey),
		Event: eventKey,
		Team:  teamKey,
		Year:  model.YearFromKey(eventKey),
	}
}

// District builds a district keyed year+abbreviation.
func District(year int, abbreviation string) *model.District {
	return &model.District{Key: fmt.Sprintf("%d%s", year, abbreviation), Year: year, Abbreviation: abbreviation}
}

// DistrictTeam joins team to district.
func DistrictTeam(districtKey, teamKey string) *model.DistrictTeam {
	return &model.DistrictTeam{
		Key:         model.DistrictTeamKeyName(districtKey, teamKey),
		DistrictKey: districtKey,
		Team:        teamKey,
		Year:        model.YearFromKey(districtKey),
	}
}

// Award builds an award of awardType at eventKey.
func Award(eventKey string, eventType, awardType int, teams ...string) *model.Award {
	return &model.Award{
		Key:       fmt.Sprintf("%s_%d", eventKey, awardType),
		Event:     eventKey,
		Year:      model.YearFromKey(eventKey),
		EventType: eventType,
		AwardType: awardType,
		TeamList:  teams,
	}
}

// Match builds a qualification match at eventKey.
func Match(eventKey string, number int, teams ...string) *model.Match {
	return &model.Match{
		Key:          fmt.Sprintf("%s_qm%d", eventKey, number),
		Event:        eventKey,
		Year:         model.YearFromKey(eventKey),
		CompLevel:    "qm",
		SetNumber:    1,
		MatchNumber:  number,
		TeamKeyNames: teams,
	}
}

// Media builds a media item for year attached to refs.
func Media(foreignKey string, year int, refs ...model.Key) *model.Media {
	m := &model.Media{Key: "imgur_" + foreignKey, ForeignKey: foreignKey, Year: Ptr(year)}
	for _, ref := range refs {
		m.AddReference(ref)
	}
	return m
}

// Robot builds a named robot for team and year.
func Robot(teamKey string, year int, name string) *model.Robot {
	return &model.Robot{Key: fmt.Sprintf("%s_%d", teamKey, year), Team: teamKey, Year: year, RobotName: Ptr(name)}
}
