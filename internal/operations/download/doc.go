// Package download fetches objects into local files and reads byte ranges
// of objects for chunked retrieval.
package download
