// Package upload performs single-object puts and resolves the content type
// of uploaded data.
package upload
