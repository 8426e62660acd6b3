package sqlite

import (
	"database/sql/driver"

	"golang.org/x/text/cases"
	msqlite "modernc.org/sqlite"
)

// casefold(x) folds x under full Unicode case folding. SQLite's own LIKE
// only ignores case for ASCII, so search filters compare folded values.
func init() {
	msqlite.MustRegisterDeterministicScalarFunction("casefold", 1, casefold)
}

func casefold(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return cases.Fold().String(v), nil
	case []byte:
		return cases.Fold().String(string(v)), nil
	default:
		return v, nil
	}
}

// foldedLike is a case-insensitive substring condition on column, bound to likePattern.
func foldedLike(column string) string {
	return `casefold(` + column + `) LIKE casefold(?) ESCAPE '\'`
}
