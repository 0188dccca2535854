// Package service runs tutoring sessions on behalf of the API layer.
//
// TutorService owns the in-memory session registry and coordinates the
// turn machine, the conversation store, the learner context builder and
// the event emitter. Each live session is guarded by its own mutex, so
// turns for one session are applied one at a time while different sessions
// proceed concurrently.
//
// Transcript writes and event delivery are best-effort: failures are
// logged and counted but never fail the learner's turn.
package service
