// Package server holds configuration for the HTTP surface of the application.
//
// It intentionally contains no server logic: the Fiber app is assembled in the
// start command, and features register their own routes through the loader.
// Keeping only the Config struct here lets the config package aggregate it
// without import cycles.
package server
