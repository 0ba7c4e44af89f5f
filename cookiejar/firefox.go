package cookiejar

import (
	"database/sql"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// extractFirefox reads the profile's moz_cookies table. Firefox stores
// expiry as Unix seconds already, unlike Chromium's microseconds-since-1601
// scheme.
func extractFirefox(cfg Config) ([]Cookie, error) {
	dbPath := firefoxProfilePath()
	if dbPath == "" {
		return nil, nil
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil
	}

	tmpPath, cleanup, err := copyLockedSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT host, name, value, path, isSecure, isHttpOnly, expiry FROM moz_cookies`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cookie
	for rows.Next() {
		var host, name, value, path string
		var secure, httpOnly int
		var expiry int64
		if err := rows.Scan(&host, &name, &value, &path, &secure, &httpOnly, &expiry); err != nil {
			continue
		}
		var expiresPtr *time.Time
		if expiry > 0 {
			t := time.Unix(expiry, 0).UTC()
			expiresPtr = &t
		}
		out = append(out, Cookie{
			Name:     name,
			Value:    value,
			Domain:   host,
			Path:     path,
			Secure:   secure != 0,
			HTTPOnly: httpOnly != 0,
			Expires:  expiresPtr,
		})
	}
	return out, rows.Err()
}
