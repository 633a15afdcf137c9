package main

import (
	"log"
	"os"

	"github.com/tetrixuno/skillup/core"
	"github.com/tetrixuno/skillup/core/filestore"
	"github.com/tetrixuno/skillup/core/submission"
	"github.com/tetrixuno/skillup/core/user"
	logsvc "github.com/tetrixuno/skillup/services/logger"
	"github.com/tetrixuno/skillup/storage/database"
	sqlxrepos "github.com/tetrixuno/skillup/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	appLogger := logsvc.NewStdLogger(logger)

	store, err := filestore.NewStore(conf, appLogger)
	errAndDie(err)
	subRepo := sqlxrepos.NewSubmissionRepository(db)

	// start CLI
	cli := commandLine{
		db:      db,
		usrSvc:  user.NewService(sqlxrepos.NewUserRepository(db)),
		fileSvc: filestore.NewService(store, submission.NewRegistry(subRepo), conf, appLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
