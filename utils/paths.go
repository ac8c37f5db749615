// utils/paths.go
// --------------
// Pure path arithmetic for CouchDB-style APIs: building database, document
// and partition paths with correct percent-escaping. No state, no I/O.
package utils

import (
	"net/url"
	"strings"
)

// Well-known server endpoints.
const (
	AllDbsPath  = "/_all_dbs"
	SessionPath = "/_session"
	UpPath      = "/_up"
)

// DatabasePath returns the request path for a database.
func DatabasePath(db string) string {
	return "/" + url.PathEscape(db)
}

// DocumentPath returns the request path for a document. Design and local
// document ids keep their "_design/" or "_local/" prefix as a path segment
// with only the tail escaped, matching how CouchDB addresses them.
func DocumentPath(db, docID string) string {
	return DatabasePath(db) + "/" + escapeDocumentID(docID)
}

// AllDocsPath returns the _all_docs path for a database.
func AllDocsPath(db string) string {
	return DatabasePath(db) + "/_all_docs"
}

// PartitionPath returns the path addressing one partition of a partitioned
// database.
func PartitionPath(db, partitionKey string) string {
	return DatabasePath(db) + "/_partition/" + url.PathEscape(partitionKey)
}

// PartitionAllDocsPath returns the _all_docs path scoped to one partition.
func PartitionAllDocsPath(db, partitionKey string) string {
	return PartitionPath(db, partitionKey) + "/_all_docs"
}

func escapeDocumentID(docID string) string {
	for _, prefix := range []string{"_design/", "_local/"} {
		if strings.HasPrefix(docID, prefix) {
			return prefix + url.PathEscape(strings.TrimPrefix(docID, prefix))
		}
	}
	return url.PathEscape(docID)
}
