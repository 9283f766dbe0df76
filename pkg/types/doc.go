// Package types defines the character-sheet domain types, the permitted-schema
// rule set, standard errors, and the Config consumed by the storage engine.
package types
