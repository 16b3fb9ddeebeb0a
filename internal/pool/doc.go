// Package pool provides reusable buffers for the transfer paths.
//
// Stream uploads read their whole source into a pooled bytes.Buffer before
// the put, and file downloads copy bodies through pooled fixed-size slices.
package pool
