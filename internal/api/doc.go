// Package api exposes the tutor service over HTTP. Handlers decode and
// validate requests, call service.TutorService and translate its errors
// into status codes without leaking internal detail.
package api
