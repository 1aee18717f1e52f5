package rsakey

import "fmt"

// Sentinel errors. All of them are contract violations by the caller and are not retryable.
var (
	ErrInvalidKeyType       = fmt.Errorf("invalid key type")
	ErrInvalidKeyMaterial   = fmt.Errorf("invalid key material")
	ErrInvalidParameter     = fmt.Errorf("invalid parameter")
	ErrUnsupportedOperation = fmt.Errorf("unsupported operation")
	ErrUnsupportedAlgorithm = fmt.Errorf("unsupported algorithm")
)
