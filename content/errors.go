package content

import "fmt"

// PdfLockedError signals an encrypted/password-protected PDF. The byte
// length is carried so callers can report the file size without
// re-reading it.
type PdfLockedError struct {
	ByteLength int
}

func (e *PdfLockedError) Error() string {
	return fmt.Sprintf("content: PDF is password-protected (%d bytes)", e.ByteLength)
}

// ConversionError wraps a handler failure. Per the error taxonomy, callers
// downgrade to PlainHandler rather than surfacing this to the end user.
type ConversionError struct {
	ContentType string
	Cause       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("content: conversion failed for %q: %v", e.ContentType, e.Cause)
}
func (e *ConversionError) Unwrap() error { return e.Cause }
