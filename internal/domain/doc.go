// Package domain contains the core entities of the tutor: flashcards, the
// in-progress learning session, the durable conversation record a session
// writes to, and the learning context derived from those records.
//
// Types here carry validation and small state helpers only. The dialogue
// logic that mutates a LearningSession lives in package tutor, and the
// derivation of a LearningContext lives in package insight.
package domain
