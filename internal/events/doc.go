// Package events mirrors tutoring activity to interested parties.
//
// The service emits an [Event] for every persisted turn and for every
// finalized conversation. Handlers are write-only sinks; the Redis handler
// publishes each event on a pub/sub channel consumed by the external
// memory service.
package events
