// Package auth issues and verifies the HMAC-signed bearer tokens that the
// voice platform presents on every API call.
package auth
