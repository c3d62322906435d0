// Package errors provides the classified error type used across sergey.
//
// A ClassifiedError carries a category, a severity and a context map. The CLI
// adapter turns categories into exit codes; the HTTP adapter turns them into
// status codes for the preview server.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "failed to write output").
//		WithContext("path", dst).
//		Build()
package errors
