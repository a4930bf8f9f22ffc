package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure the mod manager can report. Callers branch
// on the kind (KindOf, errors.Is with the sentinels below) instead of on
// message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindUnsupportedFormat
	KindDecompressionFailure
	KindClassificationAmbiguous
	KindNoRecognizedMod
	KindDestinationUnavailable
	KindCopyFailure
	KindRegistryPersistenceFailure
	KindInvalidGamePath
	KindMissingPrerequisites
	KindModNotFound
	KindDuplicateMod
	KindInvalidName
	KindInvalidConfig
)

var kindMessages = map[ErrorKind]string{
	KindUnknown:                    "unknown error",
	KindNotFound:                   "not found",
	KindUnsupportedFormat:          "unsupported archive format",
	KindDecompressionFailure:       "decompression failed",
	KindClassificationAmbiguous:    "folder contains more than one kind of mod",
	KindNoRecognizedMod:            "folder does not contain a recognized mod",
	KindDestinationUnavailable:     "destination directory unavailable",
	KindCopyFailure:                "copying mod files failed",
	KindRegistryPersistenceFailure: "saving mod registry failed",
	KindInvalidGamePath:            "not a NieR:Automata installation",
	KindMissingPrerequisites:       "required modding files are missing",
	KindModNotFound:                "mod not found",
	KindDuplicateMod:               "a mod with this name is already installed",
	KindInvalidName:                "invalid mod name",
	KindInvalidConfig:              "invalid configuration",
}

func (k ErrorKind) String() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error is the concrete error value for every ErrorKind except CopyFailure,
// which has its own type to carry the partial file list.
type Error struct {
	Kind   ErrorKind
	Path   string // Archive, directory or file involved, if any
	Detail string // Extra context (e.g. tool output)
	Err    error  // Underlying cause
}

// NewError builds an *Error
func NewError(kind ErrorKind, path, detail string, err error) *Error {
	return &Error{Kind: kind, Path: path, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	parts := []string{e.Kind.String()}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target without a path matches
// any path, so the package sentinels match every error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Path == "" || t.Path == e.Path)
}

var (
	ErrNotFound                   = &Error{Kind: KindNotFound}
	ErrUnsupportedFormat          = &Error{Kind: KindUnsupportedFormat}
	ErrDecompressionFailure       = &Error{Kind: KindDecompressionFailure}
	ErrClassificationAmbiguous    = &Error{Kind: KindClassificationAmbiguous}
	ErrNoRecognizedMod            = &Error{Kind: KindNoRecognizedMod}
	ErrDestinationUnavailable     = &Error{Kind: KindDestinationUnavailable}
	ErrCopyFailure                = &Error{Kind: KindCopyFailure}
	ErrRegistryPersistenceFailure = &Error{Kind: KindRegistryPersistenceFailure}
	ErrInvalidGamePath            = &Error{Kind: KindInvalidGamePath}
	ErrMissingPrerequisites       = &Error{Kind: KindMissingPrerequisites}
	ErrModNotFound                = &Error{Kind: KindModNotFound}
	ErrDuplicateMod               = &Error{Kind: KindDuplicateMod}
	ErrInvalidName                = &Error{Kind: KindInvalidName}
	ErrInvalidConfig              = &Error{Kind: KindInvalidConfig}
)

// CopyError reports the first file that could not be copied during routing.
// Files copied before the failure stay on disk and are listed in Copied.
type CopyError struct {
	File   string   // Source file that failed
	Copied []string // Destination paths written before the failure
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("%s: %s: %v", KindCopyFailure, e.File, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCopyFailure) hold for copy errors
func (e *CopyError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindCopyFailure && (t.Path == "" || t.Path == e.File)
}

// KindOf returns the kind of the first taxonomy error found in err's chain
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var copyErr *CopyError
	var domainErr *Error
	switch {
	case errors.As(err, &copyErr):
		return KindCopyFailure
	case errors.As(err, &domainErr):
		return domainErr.Kind
	default:
		return KindUnknown
	}
}
