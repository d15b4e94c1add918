package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/snip/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/snip/internal/client/repositories/snippets"
	"github.com/dmitrijs2005/snip/internal/client/repositories/snippettags"
	"github.com/dmitrijs2005/snip/internal/client/repositories/tags"
	"github.com/dmitrijs2005/snip/internal/dbx"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Snippets(db dbx.DBTX) snippets.Repository
	Tags(db dbx.DBTX) tags.Repository
	SnippetTags(db dbx.DBTX) snippettags.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}
