package services

import (
	"sort"
	"strings"
)

// MaxUploadSize is the ceiling on an upload request body.
const MaxUploadSize int64 = 16 << 20 // 16MB

type extensionSet map[string]struct{}

func newExtensionSet(exts ...string) extensionSet {
	set := make(extensionSet, len(exts))
	for _, ext := range exts {
		set[ext] = struct{}{}
	}
	return set
}

func (s extensionSet) has(ext string) bool {
	_, ok := s[ext]
	return ok
}

func (s extensionSet) sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Never mutated after init; only exposed through the functions below.
var (
	allowedExtensions  = newExtensionSet("txt", "pdf", "png", "jpg", "jpeg", "gif", "json")
	viewableExtensions = newExtensionSet("txt", "json")
)

// AllowedExtensions returns the accepted upload extensions in sorted order.
func AllowedExtensions() []string {
	return allowedExtensions.sorted()
}

func IsViewable(fileType string) bool {
	return viewableExtensions.has(fileType)
}

// ExtensionOf returns the lowercased text after the last dot in filename, or
// ErrFileTypeNotAllowed when there is no dot or the extension is not accepted.
func ExtensionOf(filename string) (string, error) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", ErrFileTypeNotAllowed
	}
	ext := strings.ToLower(filename[i+1:])
	if !allowedExtensions.has(ext) {
		return "", ErrFileTypeNotAllowed
	}
	return ext, nil
}
