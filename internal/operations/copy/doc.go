// Package copy performs server-side object copies and the prefix rewrite
// used to derive destination keys.
package copy
