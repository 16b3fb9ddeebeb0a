// Package limiter bounds the number of in-flight per-object operations.
// A Limiter is owned by one client and shared by every batch call it issues.
package limiter
