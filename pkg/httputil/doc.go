// Package httputil provides HTTP helpers shared by the wrldbldr API server.
//
// # Overview
//
//   - [WriteJSON] and [WriteError]: consistent response bodies
//   - [StatusFor]: maps error codes from pkg/errors to HTTP statuses
//   - [Instrument]: request logging and observability hooks
//
// Errors are written as
//
//	{"error": "scale must be positive, got -1", "code": "INVALID_INPUT"}
//
// so clients can branch on the code without parsing messages.
package httputil
