// Package list turns ListObjectsV2 calls into lazy, restartable sequences
// of pages and objects.
package list
