// Package errors provides the typed error kinds used across pointflow.
// Every failure raised while parsing a pipeline document, wiring the
// stage graph, or running a stage is an *AppError carrying a
// machine-readable ErrorCode, so callers can branch on the kind of
// failure with HasCode instead of matching message text.
package errors
