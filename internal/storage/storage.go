// Package storage keeps uploaded and generated files under
// <category>/<filename> keys.
package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	CategoryProjects     = "projects"
	CategorySolutions    = "solutions"
	CategoryDomains      = "domains"
	CategoryReports      = "reports"
	CategoryCertificates = "certificates/view"
	CategoryInvoices     = "invoices"
)

// TimestampedName builds "<unix-ms>-<original>" with the original reduced to its base name.
func TimestampedName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), sanitize(original))
}

// CodedName builds "<code>-<unix-ms><ext>".
func CodedName(code string, now time.Time, ext string) string {
	return fmt.Sprintf("%s-%d%s", code, now.UnixMilli(), ext)
}

func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

func key(category, filename string) string {
	return path.Join(category, sanitize(filename))
}

// PublicURL turns a stored path into an absolute link. Paths that already are
// URLs are returned unchanged.
func PublicURL(baseURL, stored string) string {
	if stored == "" || strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") {
		return stored
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(stored, "/")
}
