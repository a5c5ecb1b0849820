package manipulator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/pkg/testsupport"
)

func TestMergeReportsChangedFields(t *testing.T) {
	old := &model.Team{Key: "frc1", TeamNumber: 1, Nickname: testsupport.Ptr("one")}
	updated := &model.Team{Key: "frc1", Nickname: testsupport.Ptr("uno"), City: testsupport.Ptr("Pontiac")}

	changed := Merge(model.TeamSchema, old, updated, true)
	assert.Equal(t, []string{"nickname", "city"}, changed)
	assert.True(t, old.State().Dirty())
	assert.Equal(t, changed, old.State().UpdatedAttrs())
	assert.Equal(t, 1, old.TeamNumber)
}

func TestMergeIsIdempotent(t *testing.T) {
	old := testsupport.Match("2024casj", 1, "frc254")
	updated := testsupport.Match("2024casj", 1, "frc254", "frc1678")
	updated.YoutubeVideos = []string{"v1"}
	updated.AlliancesJSON = testsupport.Ptr(`{"red":{"score":10}}`)

	assert.NotEmpty(t, Merge(model.MatchSchema, old, updated, true))
	old.State().MarkClean()

	again := testsupport.Match("2024casj", 1, "frc254", "frc1678")
	again.YoutubeVideos = []string{"v1"}
	again.AlliancesJSON = testsupport.Ptr(`{ "red": {"score": 10} }`)
	assert.Empty(t, Merge(model.MatchSchema, old, again, true))
	assert.False(t, old.State().Dirty())
}

func TestMergeNoChangeLeavesClean(t *testing.T) {
	old := testsupport.District(2024, "ne")
	assert.Empty(t, Merge(model.DistrictSchema, old, testsupport.District(2024, "ne"), true))
	assert.False(t, old.State().Dirty())
	assert.Empty(t, old.State().UpdatedAttrs())
}

func TestTaskNames(t *testing.T) {
	assert.Equal(t, "clear_cache.team", clearCacheTaskName(model.KindTeam))
	assert.Equal(t, "clear_cache.event_team", clearCacheTaskName(model.KindEventTeam))
	assert.Equal(t, "post_update.event_details", postUpdateTaskName(model.KindEventDetails))
	assert.Equal(t, "post_delete.district_team", postDeleteTaskName(model.KindDistrictTeam))
	assert.Equal(t, "api_status", snakeKind(model.Kind("APIStatus")))
	assert.Equal(t, "media", snakeKind(model.KindMedia))
}
