package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	binaryResultParam  = "disable_prepared_binary_result"
	maxTracedQueryRune = 512
)

// ConnOptions locates the registry database. URL may be a postgres:// URL or
// a keyword DSN ("host=... dbname=...").
type ConnOptions struct {
	URL string
	// DisablePreparedBinaryResult asks lib/pq for text results on prepared
	// statements, which poolers such as pgbouncer need.
	DisablePreparedBinaryResult bool
}

func (o ConnOptions) isURL() bool {
	u, err := url.Parse(strings.TrimSpace(o.URL))
	return err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql")
}

// DSN returns the connection string with the binary result flag applied.
// An explicit value already in the string wins.
func (o ConnOptions) DSN() string {
	raw := strings.TrimSpace(o.URL)
	if !o.DisablePreparedBinaryResult {
		return raw
	}
	if !o.isURL() {
		if _, ok := keywordValue(raw, binaryResultParam); ok {
			return raw
		}
		return raw + " " + binaryResultParam + "=yes"
	}

	u, _ := url.Parse(raw)
	query := u.Query()
	if query.Has(binaryResultParam) {
		return raw
	}
	query.Set(binaryResultParam, "yes")
	u.RawQuery = query.Encode()
	return u.String()
}

// DatabaseName reports the dbname the connection string points at, or "".
func (o ConnOptions) DatabaseName() string {
	raw := strings.TrimSpace(o.URL)
	if o.isURL() {
		converted, err := pq.ParseURL(raw)
		if err != nil {
			return ""
		}
		raw = converted
	}
	name, _ := keywordValue(raw, "dbname")
	return name
}

func keywordValue(dsn, key string) (string, bool) {
	for _, token := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(token, "=")
		if !ok || k != key {
			continue
		}
		v = strings.Trim(v, `"'`)
		return v, v != ""
	}
	return "", false
}

// Open connects through otelsqlx so every query is traced, then pings.
func Open(ctx context.Context, opts ConnOptions) (*sqlx.DB, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("postgres url is required")
	}

	traceOpts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(traceQuery),
	}
	if name := opts.DatabaseName(); name != "" {
		traceOpts = append(traceOpts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", opts.DSN(), traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, traceOpts...)
	return db, nil
}

// traceQuery collapses whitespace so multi-line statements read as one
// span attribute, capped in characters.
func traceQuery(query string) string {
	compact := strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(compact) <= maxTracedQueryRune {
		return compact
	}
	return string([]rune(compact)[:maxTracedQueryRune]) + "..."
}
