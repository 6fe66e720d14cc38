// Package kv provides the key-value repository that backs every persisted
// collection of the registry. Values are opaque byte slices; callers decide
// the encoding.
//
// Two implementations share one table layout, metadata(key, value):
// SQLiteRepository for the embedded on-device store and PostgresRepository
// for a shared server database.
package kv
