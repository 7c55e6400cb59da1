// Package config aggregates the partial configuration structs of every core
// package into one application Config and loads them from the environment.
//
// Values come from three layers, lowest priority first:
//  1. `default` struct tags on the partial config structs
//  2. a .env file in the working directory (loaded via godotenv)
//  3. real environment variables (DATABASE_DRIVER, POLICY_MISSING_RULE, ...)
//
// Nested keys map to underscore-separated environment variables, so
// `policy.missing_rule` is set with POLICY_MISSING_RULE.
package config
