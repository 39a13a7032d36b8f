package domain

import "errors"

var (
	// ErrCredentialRequired means no usable credential was resolved. The
	// caller is expected to prompt for a key and retry; nothing retries
	// automatically.
	ErrCredentialRequired = errors.New("credential required")
	// ErrMissingInput means a mode that needs a source image was invoked
	// without one. User-correctable, raised before any network call.
	ErrMissingInput = errors.New("source image required")
	// ErrBusy means a dispatch was attempted while another is in flight.
	ErrBusy = errors.New("generation already in progress")
	// ErrNoArtifact means no tier of a pipeline produced a usable artifact.
	ErrNoArtifact = errors.New("no artifact returned")
	// ErrNoDownloadLink means a finished video job exposed no locator.
	ErrNoDownloadLink = errors.New("no download link")
	// ErrDownloadFailed means the artifact fetch returned a non-success
	// transport response.
	ErrDownloadFailed = errors.New("download failed")
	// ErrJobFailed carries a backend-reported video job failure.
	ErrJobFailed = errors.New("job failed")
	// ErrStorageQuota is returned by a snapshot writer when the serialized
	// gallery exceeds the storage budget. Recovered internally by eviction.
	ErrStorageQuota = errors.New("storage quota exceeded")
)
