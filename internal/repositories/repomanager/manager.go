package repomanager

import (
	"context"
	"database/sql"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/dbx"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/contacts"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/projects"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/team"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	Projects(db dbx.DBTX) projects.Repository
	Team(db dbx.DBTX) team.Repository
}
