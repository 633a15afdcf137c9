package submission

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/tetrixuno/skillup/core"
)

var (
	ErrNotFound           = errors.New("submission not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		GetSubmissionByID(ctx context.Context, id int) (Submission, error)
		GetSubmissionByFilePath(ctx context.Context, path string) (Submission, error)
		// ReferencedFilePaths returns all distinct non-null file paths across
		// submissions.
		ReferencedFilePaths(ctx context.Context) ([]string, error)
		CountSubmissionsWithFile(ctx context.Context) (int, error)
		// AttachSubmissionFile records filePath/fileName on the student's
		// submission for the assignment, creating the submission on first
		// upload.
		AttachSubmissionFile(ctx context.Context, studentID, assignmentID int, filePath, fileName string) (Submission, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf, logger: logger}
}

func (svc *Service) GetAssignment(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) GetByFilePath(ctx context.Context, path string) (Submission, error) {
	return svc.repo.GetSubmissionByFilePath(ctx, path)
}

// AttachFile links an uploaded artifact to the student's submission for the
// assignment and notifies the owning teacher. The stored file and the
// reference form one logical transaction from the user's perspective: a
// stored file with no reference is an orphan.
func (svc *Service) AttachFile(ctx context.Context, studentID, assignmentID int, filePath, fileName string) (Submission, error) {
	sub, err := svc.repo.AttachSubmissionFile(ctx, studentID, assignmentID, filePath, fileName)
	if err != nil {
		return Submission{}, errors.Wrap(err, "attaching submission file")
	}

	if asgmt, aErr := svc.repo.GetAssignmentByID(ctx, assignmentID); aErr == nil {
		svc.notifyTeacher(asgmt, sub)
	} else {
		svc.logger.Warn(fmt.Sprintf("skipping teacher notification: %v", aErr))
	}
	return sub, nil
}

func (svc *Service) notifyTeacher(asgmt Assignment, sub Submission) {
	if asgmt.Topic.TeacherEmail == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: asgmt.Topic.TeacherName, Address: asgmt.Topic.TeacherEmail}},
		Subject: fmt.Sprintf("New submission for %q", asgmt.Title),
		TextContent: fmt.Sprintf(
			"A new file %q was submitted for assignment %q.\n\nReview it at %s/teacher/assignments/%d",
			sub.FileName, asgmt.Title, svc.conf.FrontendBaseURL, asgmt.ID,
		),
	})
}
