// Package validation checks caller-supplied input before it reaches the
// object store or the local filesystem: bucket names, object keys and
// prefixes, upload metadata, chunk sizes, and local paths derived from keys.
package validation
