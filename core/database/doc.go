// Package database provides the GORM connection factory and schema migration.
//
// Two drivers are supported:
//   - sqlite (default): single-file store for the single-device deployment.
//     The connection pool is capped at one connection, matching the
//     single-writer discipline the reconciliation core assumes.
//   - mysql: for shared installations. DSN construction encodes credentials
//     and applies connection, read and write timeouts.
//
// Migrate wraps GORM auto-migration so commands and tests create the schema
// the same way.
package database
