// Package logutil redacts sensitive values before they reach the log
// output.
package logutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	singleQuotePattern = regexp.MustCompile(`'(?:[^']|'')*'`)
	paramPattern       = regexp.MustCompile(`\$\d+`)
	numericPattern     = regexp.MustCompile(`\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\b`)
)

// SanitizeSQL replaces literal values in a SQL statement with
// placeholders so that names, weights and other person attributes never
// appear in logs. Parameter placeholders ($1, $2, ...) are kept.
func SanitizeSQL(query string) string {
	query = singleQuotePattern.ReplaceAllString(query, "'<redacted>'")

	// hide $n placeholders from the numeric pass; the PARAM prefix keeps
	// the index digits out of \b\d+\b reach
	params := paramPattern.FindAllString(query, -1)
	for i, param := range params {
		query = strings.Replace(query, param, "\x00PARAM"+fmt.Sprint(i)+"\x00", 1)
	}
	query = numericPattern.ReplaceAllString(query, "<num>")
	for i, param := range params {
		query = strings.Replace(query, "\x00PARAM"+fmt.Sprint(i)+"\x00", param, 1)
	}

	return query
}

// SanitizeDSN masks the password component of a connection URL. Inputs
// that do not parse are returned unchanged rather than guessed at.
func SanitizeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
