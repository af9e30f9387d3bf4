// Package domain holds the shared contracts and sentinel errors of the search engine.
package domain

// KeyPrefix namespaces every key the service writes to the database.
const KeyPrefix = "talentsearch:"
