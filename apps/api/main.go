package main

import (
	"log"
	"os"

	"github.com/mtunza/tiba/apps/api/echo"
	"github.com/mtunza/tiba/core"
	"github.com/mtunza/tiba/core/child"
	"github.com/mtunza/tiba/core/document"
	"github.com/mtunza/tiba/core/therapy"
	"github.com/mtunza/tiba/core/user"
	"github.com/mtunza/tiba/services/email"
	"github.com/mtunza/tiba/services/logger"
	"github.com/mtunza/tiba/storage/database"
	"github.com/mtunza/tiba/storage/database/inmem"
	"github.com/mtunza/tiba/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)
	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	var (
		usrRepo user.Repository
		chdRepo child.Repository
		thpRepo therapy.Repository
		docRepo document.Repository
	)
	if conf.Database.Engine == "inmem" {
		db, err := inmemdb.Open()
		if err != nil {
			logger.Fatal("opening in-memory database", err)
		}
		usrRepo = inmemdb.NewUserRepository(db)
		chdRepo = inmemdb.NewChildRepository(db)
		thpRepo = inmemdb.NewTherapyRepository(db)
		docRepo = inmemdb.NewDocumentRepository(db)
	} else {
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal("opening database", err)
		}
		defer db.Close()
		if err := database.Ping(db); err != nil {
			logger.Fatal("pinging database", err)
		}
		usrRepo = sqlxrepos.NewUserRepository(db)
		chdRepo = sqlxrepos.NewChildRepository(db)
		thpRepo = sqlxrepos.NewTherapyRepository(db)
		docRepo = sqlxrepos.NewDocumentRepository(db)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	chdSvc := child.NewService(chdRepo)
	thpSvc := therapy.NewService(conf, thpRepo, chdSvc, usrSvc, mailSvc)
	docSvc := document.NewService(docRepo)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:     conf.Server.Host + ":" + conf.Server.Port,
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			ChildSvc:    chdSvc,
			TherapySvc:  thpSvc,
			DocumentSvc: docSvc,
		},
	)
	app.Start()
}
