package tests

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/tetrixuno/skillup/core/filestore"
	"github.com/tetrixuno/skillup/core/user"
	testutil "github.com/tetrixuno/skillup/tests"
)

func saveFile(t *testing.T, env *testEnv, name, content string, assignmentID, studentID int) string {
	t.Helper()
	stored, _, err := env.fileSvc.Store().Save(name, assignmentID, studentID, strings.NewReader(content))
	if err != nil {
		t.Fatalf("saveFile() failed: %v", err)
	}
	return stored
}

func Test_fileApi_upload(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Student", "student", "student@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	asgmt := testutil.CreateAssignment(t, env.db, "Homework 1", teacher)

	studentToken := getToken(t, env.conf, student)
	aid := strconv.Itoa(asgmt.ID)

	tests := []struct {
		name         string
		token        string
		filename     string
		content      string
		assignmentID string
		wantCode     int
		wantData     []byte
	}{
		{
			name: "Auth required", filename: "a.txt", content: "x", assignmentID: aid,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Student required", token: getToken(t, env.conf, teacher), filename: "a.txt", content: "x", assignmentID: aid,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		},
		{
			name: "File required", token: studentToken, assignmentID: aid,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Message: "no file provided"}),
		},
		{
			name: "Assignment required", token: studentToken, filename: "a.txt", content: "x",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Message: "assignment ID is required"}),
		},
		{
			name: "Assignment not found", token: studentToken, filename: "a.txt", content: "x", assignmentID: "999",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "assignment not found"}),
		},
		{
			name: "Extension not allowed", token: studentToken, filename: "evil.exe", content: "x", assignmentID: aid,
			wantCode: http.StatusUnsupportedMediaType, wantData: marchallObj(t, httpErr{Message: "file type not allowed"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, tt.token, tt.filename, tt.content, tt.assignmentID)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	t.Run("Upload succeeds", func(t *testing.T) {
		req, rec := newUploadRequest(t, studentToken, "My Answer.pdf", "my answer", aid)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			Message      string `json:"message"`
			FilePath     string `json:"file_path"`
			FileName     string `json:"file_name"`
			AssignmentID int    `json:"assignment_id"`
			FileSize     int64  `json:"file_size"`
		}
		unmarshalObj(t, rec.Body.Bytes(), &resp)

		if resp.Message != "File uploaded successfully" {
			t.Errorf("message = %q", resp.Message)
		}
		if resp.FileName != "My_Answer.pdf" {
			t.Errorf("file_name = %q, want %q", resp.FileName, "My_Answer.pdf")
		}
		if resp.AssignmentID != asgmt.ID {
			t.Errorf("assignment_id = %d, want %d", resp.AssignmentID, asgmt.ID)
		}
		if resp.FileSize != int64(len("my answer")) {
			t.Errorf("file_size = %d, want %d", resp.FileSize, len("my answer"))
		}
		if !env.fileSvc.Store().Exists(resp.FilePath) {
			t.Errorf("stored file %q missing on disk", resp.FilePath)
		}

		sub, err := env.subRepo.GetSubmissionByFilePath(context.Background(), resp.FilePath)
		if err != nil {
			t.Fatalf("GetSubmissionByFilePath() failed: %v", err)
		}
		if sub.StudentID != student.ID || sub.AssignmentID != asgmt.ID {
			t.Errorf("submission = student %d assignment %d, want %d/%d",
				sub.StudentID, sub.AssignmentID, student.ID, asgmt.ID)
		}
	})

	t.Run("Resubmission replaces reference", func(t *testing.T) {
		req, rec := newUploadRequest(t, studentToken, "Second Try.pdf", "better answer", aid)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body %s", rec.Code, rec.Body.String())
		}

		count, err := env.subRepo.CountSubmissionsWithFile(context.Background())
		if err != nil {
			t.Fatalf("CountSubmissionsWithFile() failed: %v", err)
		}
		if count != 1 {
			t.Errorf("submissions with file = %d, want 1", count)
		}
	})
}

func Test_fileApi_download(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Student", "student", "student@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	otherTeacher := testutil.CreateUser(t, env.usrRepo, "Other T", "teach2", "teach2@test.cd", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	asgmt := testutil.CreateAssignment(t, env.db, "Homework 1", teacher)

	const content = "essay content"
	stored := saveFile(t, env, "essay.pdf", content, asgmt.ID, student.ID)
	testutil.AttachSubmissionFile(t, env.subRepo, student.ID, asgmt.ID, stored, "essay.pdf")

	orphan := saveFile(t, env, "stray.pdf", "stray", asgmt.ID, student.ID)

	path := "/v1/files/download/" + stored
	studentToken := getToken(t, env.conf, student)

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "File not found", path: "/v1/files/download/nope.pdf", token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "file not found"}),
		},
		{
			name: "Unassociated file", path: "/v1/files/download/" + orphan, token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "file not associated with any submission"}),
		},
		{
			name: "Other student denied", path: path, token: getToken(t, env.conf, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Message: "access denied"}),
		},
		{
			name: "Other teacher denied", path: path, token: getToken(t, env.conf, otherTeacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Message: "access denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	for _, tc := range []struct {
		name  string
		token string
	}{
		{name: "Owning student", token: studentToken},
		{name: "Owning teacher", token: getToken(t, env.conf, teacher)},
		{name: "Admin", token: getToken(t, env.conf, admin)},
	} {
		t.Run(tc.name+" downloads", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, path, tc.token)
			env.app.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("code = %d; body %s", rec.Code, rec.Body.String())
			}
			if got := rec.Body.String(); got != content {
				t.Errorf("body = %q, want %q", got, content)
			}
			if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "essay.pdf") {
				t.Errorf("Content-Disposition = %q, want original name", cd)
			}
			if ar := rec.Header().Get("Accept-Ranges"); ar != "bytes" {
				t.Errorf("Accept-Ranges = %q, want bytes", ar)
			}
			if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
				t.Errorf("Cache-Control = %q, want no-cache", cc)
			}
		})
	}

	t.Run("Range request", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, studentToken)
		req.Header.Set("Range", "bytes=0-4")
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusPartialContent {
			t.Fatalf("code = %d, want %d; body %s", rec.Code, http.StatusPartialContent, rec.Body.String())
		}
		wantCR := fmt.Sprintf("bytes 0-4/%d", len(content))
		if cr := rec.Header().Get("Content-Range"); cr != wantCR {
			t.Errorf("Content-Range = %q, want %q", cr, wantCR)
		}
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusPartialContent,
			wantData: marchallObj(t, httpErr{Message: "Range request not fully supported yet"}),
		}, rec)
	})

	t.Run("Invalid range header", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, studentToken)
		req.Header.Set("Range", "bytes=abc")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "invalid range header"}),
		}, rec)
	})

	t.Run("Unsatisfiable range", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, studentToken)
		req.Header.Set("Range", "bytes=100-200")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusRequestedRangeNotSatisfiable,
			wantData: marchallObj(t, httpErr{Message: "invalid range"}),
		}, rec)
	})

	t.Run("Empty file rejected", func(t *testing.T) {
		empty := saveFile(t, env, "empty.txt", "", asgmt.ID, other.ID)
		testutil.AttachSubmissionFile(t, env.subRepo, other.ID, asgmt.ID, empty, "empty.txt")

		req, rec := newAuthRequest(http.MethodGet, "/v1/files/download/"+empty, getToken(t, env.conf, other))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "file is empty"}),
		}, rec)
	})
}

func Test_fileApi_submissionFiles(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Student", "student", "student@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	asgmt := testutil.CreateAssignment(t, env.db, "Homework 1", teacher)

	const content = "essay content"
	stored := saveFile(t, env, "essay.pdf", content, asgmt.ID, student.ID)
	sub := testutil.AttachSubmissionFile(t, env.subRepo, student.ID, asgmt.ID, stored, "essay.pdf")

	path := fmt.Sprintf("/v1/submissions/%d/files", sub.ID)
	wantFiles := marchallObj(t, map[string]interface{}{
		"files": []filestore.SubmissionFile{{
			FilePath:    stored,
			FileName:    "essay.pdf",
			DownloadURL: env.conf.BackendBaseURL + "/v1/files/download/" + stored,
			FileExists:  true,
			FileSize:    int64(len(content)),
		}},
	})

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown submission", path: "/v1/submissions/999/files", token: getToken(t, env.conf, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "submission not found"}),
		},
		{
			name: "Other student denied", path: path, token: getToken(t, env.conf, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Message: "access denied"}),
		},
		{name: "Owning student", path: path, token: getToken(t, env.conf, student), wantCode: http.StatusOK, wantData: wantFiles},
		{name: "Owning teacher", path: path, token: getToken(t, env.conf, teacher), wantCode: http.StatusOK, wantData: wantFiles},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_fileApi_adminEndpoints(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Student", "student", "student@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	asgmt := testutil.CreateAssignment(t, env.db, "Homework 1", teacher)

	referenced := saveFile(t, env, "kept.pdf", "kept", asgmt.ID, student.ID)
	testutil.AttachSubmissionFile(t, env.subRepo, student.ID, asgmt.ID, referenced, "kept.pdf")
	saveFile(t, env, "orphan1.pdf", "o1", asgmt.ID, student.ID)
	saveFile(t, env, "orphan2.pdf", "o2", asgmt.ID, student.ID)

	adminToken := getToken(t, env.conf, admin)
	studentToken := getToken(t, env.conf, student)
	forbidden := marchallObj(t, httpErr{Message: "permission denied"})

	t.Run("Admin required", func(t *testing.T) {
		for _, tt := range []httpTest{
			{method: http.MethodPost, path: "/v1/files/cleanup"},
			{method: http.MethodGet, path: "/v1/files/stats"},
			{method: http.MethodGet, path: "/v1/files/verify/" + referenced},
			{method: http.MethodGet, path: "/v1/files/verify-all"},
		} {
			req, rec := newAuthRequest(tt.method, tt.path, studentToken)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: forbidden}, rec)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/files/stats", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, filestore.Stats{TotalFiles: 3, ReferencedFiles: 1, OrphanedFiles: 2, TotalSizeMB: 0}),
		}, rec)
	})

	t.Run("Verify single", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/files/verify/"+referenced, adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, filestore.VerifyResult{
				Filename: referenced, IsValid: true, Message: "File OK (4 bytes)", Size: 4,
			}),
		}, rec)
	})

	t.Run("Verify missing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/files/verify/nope.pdf", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, filestore.VerifyResult{Filename: "nope.pdf", Message: "File does not exist"}),
		}, rec)
	})

	t.Run("Verify all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/files/verify-all", adminToken)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body %s", rec.Code, rec.Body.String())
		}
		var report filestore.VerifyAllReport
		unmarshalObj(t, rec.Body.Bytes(), &report)
		if report.TotalFiles != 3 || report.ValidFiles != 3 || report.InvalidFiles != 0 {
			t.Errorf("report = %d/%d/%d, want 3/3/0", report.TotalFiles, report.ValidFiles, report.InvalidFiles)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/files/cleanup", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]interface{}{
				"message":       "Cleanup completed. Removed 2 orphaned files.",
				"removed_count": 2,
			}),
		}, rec)

		if !env.fileSvc.Store().Exists(referenced) {
			t.Errorf("referenced file %q was removed", referenced)
		}

		// rerun removes nothing
		req, rec = newAuthRequest(http.MethodPost, "/v1/files/cleanup", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]interface{}{
				"message":       "Cleanup completed. Removed 0 orphaned files.",
				"removed_count": 0,
			}),
		}, rec)
	})
}
