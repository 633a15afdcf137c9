package filestore

import "context"

// Reference is the registry's view of a stored file: the database record
// linking a stored name to its owning submission, student and assignment.
// TeacherID is the owner of the assignment's topic, resolved by the registry
// so the access check needs no further lookups.
type Reference struct {
	SubmissionID int
	AssignmentID int
	StudentID    int
	TeacherID    int
	FilePath     string
	FileName     string
}

// Registry is the narrow interface through which this subsystem consumes the
// submission store. Find methods return nil when no record matches.
type Registry interface {
	AssignmentExists(ctx context.Context, id int) (bool, error)
	FindByFilePath(ctx context.Context, path string) (*Reference, error)
	FindBySubmissionID(ctx context.Context, id int) (*Reference, error)
	ReferencedFilePaths(ctx context.Context) ([]string, error)
	CountReferencedFiles(ctx context.Context) (int, error)
}

// Principal identifies the requesting user to the access-control check.
type Principal struct {
	ID      int
	Student bool
	Teacher bool
	Admin   bool
}

// canAccess is the access-control decision function: students read their own
// submissions, teachers read submissions for topics they own, admins read
// anything.
func canAccess(p Principal, ref Reference) bool {
	switch {
	case p.Student:
		return ref.StudentID == p.ID
	case p.Teacher && !p.Admin:
		return ref.TeacherID == p.ID
	case p.Admin:
		return true
	}
	return false
}
