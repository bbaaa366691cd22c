// Package localstore persists the client's session records in a single
// key/value table (local_storage) of an embedded sqlite database.
//
// Get reports absent keys with ok=false rather than an error. Writes are
// upserts; SetMany and Clear run inside one transaction.
package localstore
