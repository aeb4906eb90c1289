package sqlstore

import (
	"context"
	"strings"
	"time"

	"nuanswers/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the record store. driver is "postgres" or "sqlite".
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	if driver == "sqlite" {
		url = sqliteDSN(url)
	}

	db, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, errors.Persistence("failed to open record store", err)
	}

	if driver == "sqlite" {
		// one writer; also keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Persistence("record store unreachable", err)
	}
	return db, nil
}

// sqliteDSN makes time.Time values round-trip through text columns
func sqliteDSN(url string) string {
	if strings.Contains(url, "_time_format=") {
		return url
	}
	if !strings.HasPrefix(url, "file:") {
		url = "file:" + url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_time_format=sqlite"
}
