package types

import "errors"

// Style errors. Each one names a failure the user is told about; none of
// them is fatal to the process.
var (
	ErrStyleExists      = errors.New("style already exists")
	ErrStyleNotFound    = errors.New("style not found")
	ErrIOFailure        = errors.New("style file i/o failure")
	ErrParseFailure     = errors.New("malformed style file")
	ErrOverwriteRefused = errors.New("style file exists")
	ErrInvalidName      = errors.New("invalid style name")
)

// Image and configuration errors.
var (
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidMode   = errors.New("invalid apply mode")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoShortcut    = errors.New("no such shortcut")
	ErrNoSelection   = errors.New("no image selected")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
