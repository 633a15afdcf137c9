package dummydb

import (
	"context"
	"time"

	"github.com/tetrixuno/skillup/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) GetAssignmentByID(ctx context.Context, id int) (submission.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asgmt, ok := repo.db.assignments[id]; ok {
		return *asgmt, nil
	}
	return submission.Assignment{}, submission.ErrAssignmentNotFound
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id int) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return repo.withAssignment(*sub), nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) GetSubmissionByFilePath(ctx context.Context, path string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.submissions {
		if sub.FilePath == path {
			return repo.withAssignment(*sub), nil
		}
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) ReferencedFilePaths(ctx context.Context) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]struct{})
	paths := make([]string, 0, len(repo.db.submissions))
	for _, sub := range repo.db.submissions {
		if sub.FilePath == "" {
			continue
		}
		if _, ok := seen[sub.FilePath]; ok {
			continue
		}
		seen[sub.FilePath] = struct{}{}
		paths = append(paths, sub.FilePath)
	}
	return paths, nil
}

func (repo *submissionRepository) CountSubmissionsWithFile(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, sub := range repo.db.submissions {
		if sub.FilePath != "" {
			n++
		}
	}
	return n, nil
}

func (repo *submissionRepository) AttachSubmissionFile(ctx context.Context, studentID, assignmentID int, filePath, fileName string) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.assignments[assignmentID]; !ok {
		return submission.Submission{}, submission.ErrAssignmentNotFound
	}

	now := time.Now().UTC()
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			sub.FilePath = filePath
			sub.FileName = fileName
			sub.UpdatedAt = now
			return repo.withAssignment(*sub), nil
		}
	}

	repo.db.seq++
	sub := &submission.Submission{
		ID:           repo.db.seq,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		FilePath:     filePath,
		FileName:     fileName,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}
	repo.db.submissions[sub.ID] = sub
	return repo.withAssignment(*sub), nil
}

func (repo *submissionRepository) withAssignment(sub submission.Submission) submission.Submission {
	if asgmt, ok := repo.db.assignments[sub.AssignmentID]; ok {
		sub.Assignment = *asgmt
	}
	return sub
}
