// Package storage wraps the Minio S3 client behind a narrow interface.
//
// The backup feature is its only consumer: exports are uploaded as JSON
// objects and restores read them back. The Client interface exists so tests
// can substitute the testify mock in storage/mocks without a running
// endpoint.
package storage
