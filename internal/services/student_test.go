package services

import (
	"context"
	"testing"
	"time"

	"github.com/linguacenter/apiserver/internal/apperr"
	"github.com/linguacenter/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStudentService() (*StudentService, *fakeState) {
	state := newFakeState()
	return &StudentService{repos: fakeRepositories{state}}, state
}

func seedStudent(state *fakeState) types.Student {
	student := types.Student{
		ID:          state.id(),
		UserID:      42,
		StudentCode: "STUABCD1234",
		JoinedDate:  time.Now().AddDate(0, -6, 0),
	}
	state.students[student.ID] = student
	return student
}

func TestStudentUpdateKeepsImmutableFields(t *testing.T) {
	svc, state := newTestStudentService()
	student := seedStudent(state)

	level := "B2"
	courses := 4
	updated, err := svc.Update(context.Background(), student.ID, types.StudentUpdate{
		CurrentLevel:      &level,
		TotalCoursesTaken: &courses,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.CurrentLevel)
	assert.Equal(t, "B2", *updated.CurrentLevel)
	assert.Equal(t, 4, updated.TotalCoursesTaken)
	assert.Equal(t, student.StudentCode, updated.StudentCode)
	assert.Equal(t, student.UserID, updated.UserID)
	assert.True(t, student.JoinedDate.Equal(updated.JoinedDate))
}

func TestStudentLookupsMapNotFound(t *testing.T) {
	svc, state := newTestStudentService()
	student := seedStudent(state)

	byCode, err := svc.GetByCode(context.Background(), student.StudentCode)
	require.NoError(t, err)
	assert.Equal(t, student.ID, byCode.ID)

	byUser, err := svc.GetByUserID(context.Background(), student.UserID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, byUser.ID)

	_, err = svc.Get(context.Background(), 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = svc.GetByCode(context.Background(), "STUMISSING0")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestStudentSoftDeleteAndRestore(t *testing.T) {
	svc, state := newTestStudentService()
	student := seedStudent(state)

	require.NoError(t, svc.SoftDelete(context.Background(), student.ID))
	assert.True(t, state.students[student.ID].IsDeleted)

	require.NoError(t, svc.Restore(context.Background(), student.ID))
	restored := state.students[student.ID]
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)

	assert.True(t, apperr.IsKind(svc.SoftDelete(context.Background(), 999), apperr.KindNotFound))
}
