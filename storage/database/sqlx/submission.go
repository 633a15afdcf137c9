package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tetrixuno/skillup/core/submission"
)

type assignmentRow struct {
	ID           int         `db:"id"`
	Title        string      `db:"title"`
	TopicID      int         `db:"topic_id"`
	DueDate      null.Time   `db:"due_date"`
	TopicName    string      `db:"topic_name"`
	TeacherID    null.Int    `db:"teacher_id"`
	TeacherName  null.String `db:"teacher_name"`
	TeacherEmail null.String `db:"teacher_email"`
}

func (r assignmentRow) unpack() submission.Assignment {
	return submission.Assignment{
		ID:      r.ID,
		Title:   r.Title,
		TopicID: r.TopicID,
		DueDate: r.DueDate.Time.UTC(),
		Topic: submission.Topic{
			ID:           r.TopicID,
			Name:         r.TopicName,
			TeacherID:    r.TeacherID.Int,
			TeacherName:  r.TeacherName.String,
			TeacherEmail: r.TeacherEmail.String,
		},
	}
}

const (
	assignmentQuery = `
		SELECT a.id, a.title, a.topic_id, a.due_date,
		       t.name AS topic_name, t.teacher_id,
		       u.name AS teacher_name, u.email AS teacher_email
		FROM assignment a
		JOIN topic t ON t.id = a.topic_id
		LEFT JOIN "user" u ON u.id = t.teacher_id`

	submissionQuery = `
		SELECT s.id, s.assignment_id, s.student_id, s.file_path, s.file_name,
		       s.submitted_at, s.updated_at,
		       a.title, a.topic_id, a.due_date,
		       t.name AS topic_name, t.teacher_id,
		       u.name AS teacher_name, u.email AS teacher_email
		FROM submission s
		JOIN assignment a ON a.id = s.assignment_id
		JOIN topic t ON t.id = a.topic_id
		LEFT JOIN "user" u ON u.id = t.teacher_id`
)

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo submissionRepository) GetAssignmentByID(ctx context.Context, id int) (submission.Assignment, error) {
	var row assignmentRow
	err := repo.db.GetContext(ctx, &row, assignmentQuery+` WHERE a.id = $1`, id)
	if err == sql.ErrNoRows {
		return submission.Assignment{}, submission.ErrAssignmentNotFound
	}
	if err != nil {
		return submission.Assignment{}, errors.Wrap(err, "getting assignment by ID")
	}
	return row.unpack(), nil
}

func (repo submissionRepository) getSubmission(ctx context.Context, where string, arg interface{}) (submission.Submission, error) {
	var row struct {
		ID           int         `db:"id"`
		AssignmentID int         `db:"assignment_id"`
		StudentID    int         `db:"student_id"`
		FilePath     null.String `db:"file_path"`
		FileName     null.String `db:"file_name"`
		SubmittedAt  time.Time   `db:"submitted_at"`
		UpdatedAt    time.Time   `db:"updated_at"`
		Title        string      `db:"title"`
		TopicID      int         `db:"topic_id"`
		DueDate      null.Time   `db:"due_date"`
		TopicName    string      `db:"topic_name"`
		TeacherID    null.Int    `db:"teacher_id"`
		TeacherName  null.String `db:"teacher_name"`
		TeacherEmail null.String `db:"teacher_email"`
	}
	err := repo.db.GetContext(ctx, &row, submissionQuery+where, arg)
	if err == sql.ErrNoRows {
		return submission.Submission{}, submission.ErrNotFound
	}
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "getting submission")
	}

	return submission.Submission{
		ID:           row.ID,
		AssignmentID: row.AssignmentID,
		StudentID:    row.StudentID,
		FilePath:     row.FilePath.String,
		FileName:     row.FileName.String,
		SubmittedAt:  row.SubmittedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		Assignment: submission.Assignment{
			ID:      row.AssignmentID,
			Title:   row.Title,
			TopicID: row.TopicID,
			DueDate: row.DueDate.Time.UTC(),
			Topic: submission.Topic{
				ID:           row.TopicID,
				Name:         row.TopicName,
				TeacherID:    row.TeacherID.Int,
				TeacherName:  row.TeacherName.String,
				TeacherEmail: row.TeacherEmail.String,
			},
		},
	}, nil
}

func (repo submissionRepository) GetSubmissionByID(ctx context.Context, id int) (submission.Submission, error) {
	return repo.getSubmission(ctx, ` WHERE s.id = $1`, id)
}

func (repo submissionRepository) GetSubmissionByFilePath(ctx context.Context, path string) (submission.Submission, error) {
	return repo.getSubmission(ctx, ` WHERE s.file_path = $1`, path)
}

func (repo submissionRepository) ReferencedFilePaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := repo.db.SelectContext(
		ctx, &paths,
		`SELECT DISTINCT file_path FROM submission WHERE file_path IS NOT NULL`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "listing referenced file paths")
	}
	return paths, nil
}

func (repo submissionRepository) CountSubmissionsWithFile(ctx context.Context) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM submission WHERE file_path IS NOT NULL`)
	if err != nil {
		return 0, errors.Wrap(err, "counting submissions with file")
	}
	return count, nil
}

func (repo submissionRepository) AttachSubmissionFile(
	ctx context.Context,
	studentID, assignmentID int,
	filePath, fileName string,
) (submission.Submission, error) {
	query := `
		INSERT INTO submission (assignment_id, student_id, file_path, file_name, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (assignment_id, student_id)
		DO UPDATE SET file_path = EXCLUDED.file_path, file_name = EXCLUDED.file_name, updated_at = now()
		RETURNING id`
	var id int
	err := repo.db.QueryRowContext(ctx, query, assignmentID, studentID, filePath, fileName).Scan(&id)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "attaching submission file")
	}
	return repo.GetSubmissionByID(ctx, id)
}
