// Package delete removes objects with DeleteObjects, splitting key sets into
// batches of at most 1000 keys and mapping the response back onto each key.
package delete
