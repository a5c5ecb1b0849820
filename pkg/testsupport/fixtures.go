package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/model"
)

// LoadFixture reads a file relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON reads a JSON fixture into dest.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, path), dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// Season is the shape of a season fixture: every entity a test wants stored
// before it starts writing.
type Season struct {
	Teams         []*model.Team         `json:"teams"`
	Events        []*model.Event        `json:"events"`
	EventTeams    []*model.EventTeam    `json:"event_teams"`
	Districts     []*model.District     `json:"districts"`
	DistrictTeams []*model.DistrictTeam `json:"district_teams"`
	Matches       []*model.Match        `json:"matches"`
	Awards        []*model.Award        `json:"awards"`
	Medias        []*model.Media        `json:"medias"`
}

// LoadSeason reads a Season fixture and writes every entity into store directly,
// bypassing manipulators so no tasks are scheduled.
func LoadSeason(t testing.TB, store datastore.Store, path string) Season {
	t.Helper()

	var season Season
	LoadFixtureJSON(t, path, &season)
	Seed(t, store, model.TeamSchema, season.Teams...)
	Seed(t, store, model.EventSchema, season.Events...)
	Seed(t, store, model.EventTeamSchema, season.EventTeams...)
	Seed(t, store, model.DistrictSchema, season.Districts...)
	Seed(t, store, model.DistrictTeamSchema, season.DistrictTeams...)
	Seed(t, store, model.MatchSchema, season.Matches...)
	Seed(t, store, model.AwardSchema, season.Awards...)
	Seed(t, store, model.MediaSchema, season.Medias...)
	return season
}

// Seed stores entities without scheduling any task.
func Seed[E model.Entity](t testing.TB, store datastore.Store, schema model.Schema[E], entities ...E) {
	t.Helper()

	if len(entities) == 0 {
		return
	}
	if err := datastore.NewCollection(store, schema).PutMulti(context.Background(), entities); err != nil {
		t.Fatalf("failed to seed %s: %v", schema.Kind, err)
	}
}

// CompareWithGolden compares actual with a golden file, creating the file on
// first run.
func CompareWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}
	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// WriteGolden writes data to a golden file, creating its directory.
func WriteGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// FixturePath joins filename onto the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath joins filename onto the testdata/golden directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
