package submission

import "time"

// Topic groups assignments under an owning teacher.
type Topic struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	TeacherID    int    `json:"teacher_id"`
	TeacherName  string `json:"teacher_name,omitempty"`
	TeacherEmail string `json:"teacher_email,omitempty"`
}

type Assignment struct {
	ID      int       `json:"id"`
	Title   string    `json:"title"`
	TopicID int       `json:"topic_id"`
	Topic   Topic     `json:"topic"`
	DueDate time.Time `json:"due_date"`
}

// Submission is a student's answer to an Assignment. FilePath is the stored
// (on-disk) name of the uploaded artifact; FileName is the original
// human-facing name. An empty FilePath means nothing was uploaded yet.
type Submission struct {
	ID           int        `json:"id"`
	AssignmentID int        `json:"assignment_id"`
	Assignment   Assignment `json:"assignment"`
	StudentID    int        `json:"student_id"`
	FilePath     string     `json:"file_path,omitempty"`
	FileName     string     `json:"file_name,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at"`   // UTC
}
