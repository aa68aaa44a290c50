package gate

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced to callers. The HTTP layer maps these onto
// status codes; everything else is treated as an internal failure.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrDecodeFailure         = errors.New("failed to decode image")
	ErrNoFaceDetected        = errors.New("no face detected")
	ErrMultipleFacesDetected = errors.New("multiple faces detected")
	ErrEncodingFailed        = errors.New("failed to compute face embedding")
	ErrMissingCapture        = errors.New("no face captured")
	ErrDuplicateIdentity     = errors.New("identity already registered")
	ErrNoMatch               = errors.New("face not recognized")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrStorageUnavailable    = errors.New("storage unavailable")
)

// storageErr marks err as a storage-layer failure while keeping its text.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
