package services

import (
	"context"
	"testing"

	"github.com/linguacenter/apiserver/internal/apperr"
	"github.com/linguacenter/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTeacherService() (*TeacherService, *fakeState) {
	state := newFakeState()
	return &TeacherService{repos: fakeRepositories{state}}, state
}

func seedTeacher(state *fakeState) types.Teacher {
	teacher := types.Teacher{
		ID:          state.id(),
		UserID:      17,
		TeacherCode: "TCHABCD1234",
	}
	state.teachers[teacher.ID] = teacher
	return teacher
}

func TestTeacherUpdateKeepsImmutableFields(t *testing.T) {
	svc, state := newTestTeacherService()
	teacher := seedTeacher(state)

	specialization := "phonetics"
	years := 9
	updated, err := svc.Update(context.Background(), teacher.ID, types.TeacherUpdate{
		Specialization:  &specialization,
		ExperienceYears: &years,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Specialization)
	assert.Equal(t, "phonetics", *updated.Specialization)
	assert.Equal(t, 9, updated.ExperienceYears)
	assert.Equal(t, teacher.TeacherCode, updated.TeacherCode)
	assert.Equal(t, teacher.UserID, updated.UserID)
}

func TestTeacherLookupsMapNotFound(t *testing.T) {
	svc, state := newTestTeacherService()
	teacher := seedTeacher(state)

	byCode, err := svc.GetByCode(context.Background(), teacher.TeacherCode)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, byCode.ID)

	byUser, err := svc.GetByUserID(context.Background(), teacher.UserID)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, byUser.ID)

	_, err = svc.Get(context.Background(), 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = svc.GetByCode(context.Background(), "TCHMISSING0")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestTeacherSoftDeleteAndRestore(t *testing.T) {
	svc, state := newTestTeacherService()
	teacher := seedTeacher(state)

	require.NoError(t, svc.SoftDelete(context.Background(), teacher.ID))
	assert.True(t, state.teachers[teacher.ID].IsDeleted)

	require.NoError(t, svc.Restore(context.Background(), teacher.ID))
	restored := state.teachers[teacher.ID]
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)

	assert.True(t, apperr.IsKind(svc.SoftDelete(context.Background(), 999), apperr.KindNotFound))
}
