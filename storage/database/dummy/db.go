package dummydb

import (
	"sync"

	"github.com/tetrixuno/skillup/core/submission"
	"github.com/tetrixuno/skillup/core/user"
)

type (
	// DB is an in-memory stand-in for the real database, used in tests and
	// local development.
	DB struct {
		user       *userTable
		submission *submissionTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
		seq   int
	}

	submissionTable struct {
		sync.RWMutex
		assignments map[int]*submission.Assignment
		submissions map[int]*submission.Submission
		seq         int
		asgmtSeq    int
	}
)

// CreateAssignment seeds an assignment. Test fixtures only; the API has no
// assignment management endpoints.
func (db *DB) CreateAssignment(asgmt submission.Assignment) submission.Assignment {
	t := db.submission
	t.Lock()
	defer t.Unlock()

	t.asgmtSeq++
	asgmt.ID = t.asgmtSeq
	t.assignments[asgmt.ID] = &asgmt
	return asgmt
}

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[int]*user.User)},
		submission: &submissionTable{
			assignments: make(map[int]*submission.Assignment),
			submissions: make(map[int]*submission.Submission),
		},
	}
	return db, nil
}
