package submission

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tetrixuno/skillup/core/filestore"
)

// Registry adapts the submission store to the narrow interface the file
// storage subsystem consumes. It never invents a reference: records only
// come from the repository.
type Registry struct {
	repo Repository
}

var _ filestore.Registry = (*Registry)(nil)

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

func (r *Registry) AssignmentExists(ctx context.Context, id int) (bool, error) {
	if _, err := r.repo.GetAssignmentByID(ctx, id); err != nil {
		if errors.Cause(err) == ErrAssignmentNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Registry) FindByFilePath(ctx context.Context, path string) (*filestore.Reference, error) {
	sub, err := r.repo.GetSubmissionByFilePath(ctx, path)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	ref := toReference(sub)
	return &ref, nil
}

func (r *Registry) FindBySubmissionID(ctx context.Context, id int) (*filestore.Reference, error) {
	sub, err := r.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	ref := toReference(sub)
	return &ref, nil
}

func (r *Registry) ReferencedFilePaths(ctx context.Context) ([]string, error) {
	return r.repo.ReferencedFilePaths(ctx)
}

func (r *Registry) CountReferencedFiles(ctx context.Context) (int, error) {
	return r.repo.CountSubmissionsWithFile(ctx)
}

func toReference(sub Submission) filestore.Reference {
	return filestore.Reference{
		SubmissionID: sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		TeacherID:    sub.Assignment.Topic.TeacherID,
		FilePath:     sub.FilePath,
		FileName:     sub.FileName,
	}
}
