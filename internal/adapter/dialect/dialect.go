// Package dialect identifies which database engine a connection targets.
package dialect

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoDialect is returned when neither the explicit identifier nor the
	// connection URL match a known dialect.
	ErrNoDialect = errors.New("unable to determine database dialect")

	// ErrUnsupportedDialect is returned when a dialect is known but no Go driver is wired for it.
	ErrUnsupportedDialect = errors.New("database dialect not supported")
)

// Dialect identifiers.
const (
	H2         = "h2"
	MySQL      = "mysql"
	Oracle     = "oracle"
	PostgreSQL = "postgresql"
	MSSQL      = "mssql"
	SQLite     = "sqlite"
)

// Dialect describes one known database engine.
type Dialect struct {
	ID string

	// Driver is the database/sql driver name, empty when none is linked in.
	Driver string

	prefixes []string
	strip    []string
}

// MatchesURL reports whether url targets this dialect. url must already be trimmed.
func (d Dialect) MatchesURL(url string) bool {
	for _, p := range d.prefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}

// Supported reports whether a driver is available for the dialect.
func (d Dialect) Supported() bool {
	return d.Driver != ""
}

// DSN converts url into the form the driver expects.
func (d Dialect) DSN(url string) string {
	url = strings.TrimSpace(url)
	for _, p := range d.strip {
		if strings.HasPrefix(url, p) {
			return strings.TrimPrefix(url, p)
		}
	}
	return url
}

// known is checked in order; the first match wins.
var known = []Dialect{
	{ID: H2, prefixes: []string{"jdbc:h2:"}},
	{ID: MySQL, prefixes: []string{"jdbc:mysql:", "mysql://"}},
	{ID: Oracle, prefixes: []string{"jdbc:oracle:", "oracle://"}},
	{
		ID:       PostgreSQL,
		Driver:   "postgres",
		prefixes: []string{"jdbc:postgresql:", "postgres://", "postgresql://"},
		strip:    []string{"jdbc:"},
	},
	{ID: MSSQL, prefixes: []string{"jdbc:sqlserver:", "jdbc:jtds:", "sqlserver://"}},
	{
		ID:       SQLite,
		Driver:   "sqlite",
		prefixes: []string{"jdbc:sqlite:", "sqlite:", "file:", ":memory:"},
		strip:    []string{"jdbc:sqlite://", "jdbc:sqlite:", "sqlite://", "sqlite:"},
	},
}

// All returns the known dialects in matching order.
func All() []Dialect {
	out := make([]Dialect, len(known))
	copy(out, known)
	return out
}

// Find resolves a dialect. A non-blank id is matched exactly and takes precedence
// over url; otherwise the trimmed url is matched against each dialect's prefixes.
func Find(id, url string) (Dialect, error) {
	var (
		d  Dialect
		ok bool
	)
	if strings.TrimSpace(id) != "" {
		d, ok = findBy(func(d Dialect) bool { return d.ID == id })
	} else {
		trimmed := strings.TrimSpace(url)
		d, ok = findBy(func(d Dialect) bool { return d.MatchesURL(trimmed) })
	}
	if !ok {
		return Dialect{}, fmt.Errorf("%w with dialect %q and connection url %q", ErrNoDialect, id, url)
	}
	return d, nil
}

func findBy(match func(Dialect) bool) (Dialect, bool) {
	for _, d := range known {
		if match(d) {
			return d, true
		}
	}
	return Dialect{}, false
}
