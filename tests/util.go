package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/tetrixuno/skillup/core"
	"github.com/tetrixuno/skillup/core/submission"
	"github.com/tetrixuno/skillup/core/user"
	logsvc "github.com/tetrixuno/skillup/services/logger"
	dummydb "github.com/tetrixuno/skillup/storage/database/dummy"
)

// NewTestConfig returns a config backed by a per-test temp upload dir.
func NewTestConfig(t *testing.T) *core.Config {
	t.Helper()
	return &core.Config{
		Debug:           false,
		TestMode:        true,
		Env:             "TEST",
		Build:           "test",
		AppName:         "SkillUp",
		SecretKey:       "secret",
		BackendBaseURL:  "http://localhost:8000",
		FrontendBaseURL: "http://localhost:5173",
		Server: core.ServerConfig{
			JWTExpirationDelta:        1 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			ShutdownTimeout:           5 * time.Second,
		},
		Upload: core.UploadConfig{
			Dir:     t.TempDir(),
			MaxSize: 100 * 1024 * 1024,
			AllowedExtensions: []string{
				"txt", "pdf", "png", "jpg", "jpeg", "gif",
				"doc", "docx", "xls", "xlsx", "ppt", "pptx", "zip", "rar",
			},
		},
	}
}

func NewTestLogger() core.Logger {
	return logsvc.NewStdLogger(log.New(io.Discard, "", 0))
}

func OpenDB(t *testing.T) *dummydb.DB {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateAssignment(t *testing.T, db *dummydb.DB, title string, teacher user.User) submission.Assignment {
	t.Helper()
	return db.CreateAssignment(submission.Assignment{
		Title: title,
		Topic: submission.Topic{
			Name:         title + " topic",
			TeacherID:    teacher.ID,
			TeacherName:  teacher.Name,
			TeacherEmail: teacher.Email,
		},
		DueDate: time.Now().UTC().Add(7 * 24 * time.Hour),
	})
}

func AttachSubmissionFile(
	t *testing.T,
	repo submission.Repository,
	studentID, assignmentID int,
	filePath, fileName string,
) submission.Submission {
	t.Helper()
	sub, err := repo.AttachSubmissionFile(context.Background(), studentID, assignmentID, filePath, fileName)
	if err != nil {
		t.Fatalf("AttachSubmissionFile() failed: %v", err)
	}
	return sub
}
