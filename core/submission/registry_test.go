package submission_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetrixuno/skillup/core/submission"
	"github.com/tetrixuno/skillup/core/user"
	dummydb "github.com/tetrixuno/skillup/storage/database/dummy"
	testutil "github.com/tetrixuno/skillup/tests"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	db := testutil.OpenDB(t)
	repo := dummydb.NewSubmissionRepository(db)
	usrRepo := dummydb.NewUserRepository(db)
	reg := submission.NewRegistry(repo)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.cd", "", []string{user.RoleStudent}, true)
	asgmt := testutil.CreateAssignment(t, db, "Homework 1", teacher)
	sub := testutil.AttachSubmissionFile(t, repo, student.ID, asgmt.ID, "stored_name.pdf", "answer.pdf")

	t.Run("AssignmentExists", func(t *testing.T) {
		ok, err := reg.AssignmentExists(ctx, asgmt.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = reg.AssignmentExists(ctx, 999)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("FindByFilePath", func(t *testing.T) {
		ref, err := reg.FindByFilePath(ctx, "stored_name.pdf")
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, sub.ID, ref.SubmissionID)
		assert.Equal(t, student.ID, ref.StudentID)
		assert.Equal(t, asgmt.ID, ref.AssignmentID)
		assert.Equal(t, teacher.ID, ref.TeacherID)
		assert.Equal(t, "answer.pdf", ref.FileName)

		ref, err = reg.FindByFilePath(ctx, "unknown.pdf")
		require.NoError(t, err)
		assert.Nil(t, ref)
	})

	t.Run("FindBySubmissionID", func(t *testing.T) {
		ref, err := reg.FindBySubmissionID(ctx, sub.ID)
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, "stored_name.pdf", ref.FilePath)

		ref, err = reg.FindBySubmissionID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, ref)
	})

	t.Run("ReferencedFilePaths", func(t *testing.T) {
		paths, err := reg.ReferencedFilePaths(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"stored_name.pdf"}, paths)
	})

	t.Run("CountReferencedFiles", func(t *testing.T) {
		count, err := reg.CountReferencedFiles(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
