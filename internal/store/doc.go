// Package store defines the persistence contracts the tutor depends on:
// the conversation record store that holds transcripts, and the card store
// that supplies decks. Implementations live under internal/platform.
package store
