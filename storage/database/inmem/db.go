// Package inmemdb is a mutex-guarded, map-backed implementation of the
// domain repositories. It backs the DEV server and the test suites; the sqlx
// repositories are its Postgres twin.
package inmemdb

import (
	"sync"

	"github.com/mtunza/tiba/core/child"
	"github.com/mtunza/tiba/core/document"
	"github.com/mtunza/tiba/core/therapy"
	"github.com/mtunza/tiba/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	childTable struct {
		mutex sync.RWMutex
		table map[string]*child.Child
	}

	sessionTable struct {
		mutex sync.RWMutex
		table map[string]*therapy.Session
	}

	assessmentTable struct {
		mutex sync.RWMutex
		table map[string]*therapy.Assessment
	}

	documentTable struct {
		mutex sync.RWMutex
		table map[string]*document.Document
	}

	DB struct {
		user       *userTable
		child      *childTable
		session    *sessionTable
		assessment *assessmentTable
		document   *documentTable
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		child:      &childTable{table: make(map[string]*child.Child)},
		session:    &sessionTable{table: make(map[string]*therapy.Session)},
		assessment: &assessmentTable{table: make(map[string]*therapy.Assessment)},
		document:   &documentTable{table: make(map[string]*document.Document)},
	}
	return db, nil
}
