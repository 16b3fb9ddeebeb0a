// Package operations contains the per-object S3 operations the batch engine
// fans out: listing, upload, download, copy and batched deletion.
package operations
