package services

import "errors"

// Client errors. Anything else returned by FileService is a server error.
var (
	ErrNoFileSelected     = errors.New("no file selected")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileNotFound       = errors.New("file not found")
	ErrBlobNotFound       = errors.New("file not found on server")
	ErrFileNotViewable    = errors.New("file type not viewable")
)

var errInvalidUTF8 = errors.New("file content is not valid UTF-8")
