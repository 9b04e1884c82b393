package service

import (
	"context"
	"testing"

	"labelquest/internal/common"
	"labelquest/internal/domain/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsFixture struct {
	userRepo   *fakeUserRepo
	statsRepo  *fakeStatsRepo
	answerRepo *fakeAnswerRepo
	imageRepo  *fakeImageRepo
	service    *StatsService
}

func newStatsFixture() *statsFixture {
	f := &statsFixture{
		userRepo:   newFakeUserRepo(),
		statsRepo:  newFakeStatsRepo(),
		answerRepo: newFakeAnswerRepo(),
		imageRepo:  newFakeImageRepo(),
	}
	f.service = NewStatsService(f.userRepo, f.statsRepo, f.answerRepo, f.imageRepo)
	return f
}

func (f *statsFixture) addUser(username string) *model.User {
	user := &model.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    username + "@example.org",
		Role:     model.RoleUser,
		UserType: model.UserTypeCitizen,
	}
	f.userRepo.add(user)
	return user
}

func (f *statsFixture) addAnswers(kind model.GameKind, userID string, n int) {
	for i := 0; i < n; i++ {
		f.answerRepo.Upsert(context.Background(), kind, &model.Answer{
			ID:         uuid.NewString(),
			UserID:     userID,
			ItemID:     uuid.NewString(),
			CategoryID: uuid.NewString(),
		})
	}
}

func (f *statsFixture) addUploads(userID string, n int, validated bool) {
	for i := 0; i < n; i++ {
		f.imageRepo.Create(context.Background(), &model.Image{
			ID:         uuid.NewString(),
			FileKey:    uuid.NewString(),
			UploaderID: userID,
			Validated:  validated,
			Active:     true,
		})
	}
}

func TestUpdateStatsComputesWeightedScore(t *testing.T) {
	f := newStatsFixture()
	user := f.addUser("alice")

	f.addAnswers(model.GameImages, user.ID, 3)
	f.addAnswers(model.GameTags, user.ID, 7)
	f.addUploads(user.ID, 2, false)
	f.addUploads(user.ID, 4, true)

	stats, err := f.service.UpdateStats(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.NAssociatedImages)
	assert.Equal(t, 7, stats.NAssociatedTags)
	// Validated uploads are still uploads; both counters include them.
	assert.Equal(t, 6, stats.NUploadedImages)
	assert.Equal(t, 4, stats.NValidatedUploadedImages)
	assert.Equal(t, 10*4+2*7+2*3+5*6, stats.Score)
}

func TestUpdateStatsComputesLevels(t *testing.T) {
	f := newStatsFixture()
	user := f.addUser("bob")

	f.addAnswers(model.GameImages, user.ID, 5)
	f.addAnswers(model.GameTags, user.ID, 15)

	stats, err := f.service.UpdateStats(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ImagesLevel) // golden value for a count of 5
	assert.Equal(t, 3, stats.TagsLevel)   // golden value for a count of 15
	assert.Equal(t, 1, stats.UploadLevel) // zero uploads stays at level 1
	assert.Equal(t, model.Level(float64(stats.Score), model.OverallLevelM, model.LevelB), stats.OverallLevel)
}

func TestUpdateStatsPersistsRecomputedRow(t *testing.T) {
	f := newStatsFixture()
	user := f.addUser("carol")
	f.addAnswers(model.GameTags, user.ID, 2)

	_, err := f.service.UpdateStats(context.Background(), user.ID)
	require.NoError(t, err)

	saved := f.statsRepo.rows[user.ID]
	require.NotNil(t, saved)
	assert.Equal(t, 4, saved.Score)

	// A later call recounts from scratch rather than patching increments.
	f.addAnswers(model.GameTags, user.ID, 3)
	stats, err := f.service.UpdateStats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.NAssociatedTags)
	assert.Equal(t, 10, stats.Score)
}

func TestUpdateStatsRejectsUnknownUser(t *testing.T) {
	f := newStatsFixture()

	_, err := f.service.UpdateStats(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = f.service.UpdateStats(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestUpdateStatsIgnoresInactiveUploads(t *testing.T) {
	f := newStatsFixture()
	user := f.addUser("dave")

	f.addUploads(user.ID, 3, true)
	// Soft-deleted uploads count for nothing.
	for _, image := range f.imageRepo.images {
		image.Active = false
		break
	}

	stats, err := f.service.UpdateStats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.NUploadedImages)
	assert.Equal(t, 2, stats.NValidatedUploadedImages)
}
