package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/snip/internal/dbx"
	"github.com/dmitrijs2005/snip/internal/server/repositories/pushes"
	"github.com/dmitrijs2005/snip/internal/server/repositories/snippets"
	"github.com/dmitrijs2005/snip/internal/server/repositories/snippettags"
	"github.com/dmitrijs2005/snip/internal/server/repositories/tags"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Snippets(db dbx.DBTX) snippets.Repository
	Tags(db dbx.DBTX) tags.Repository
	SnippetTags(db dbx.DBTX) snippettags.Repository
	Pushes(db dbx.DBTX) pushes.Repository
}
