package repositories

import (
	"errors"

	"github.com/Masterminds/squirrel"
)

// SqBuilder targets postgres, SqliteBuilder targets sqlite.
var (
	SqBuilder     = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	SqliteBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
)

var ErrBadQuery = errors.New("bad query")
