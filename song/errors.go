package song

import "errors"

// Error taxonomy shared by generation, export and the playback backends.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrFileWriteFailed  = errors.New("file write failed")
	ErrAudioInitFailed  = errors.New("audio init failed")
	ErrDeviceNotFound   = errors.New("device not found")
)
