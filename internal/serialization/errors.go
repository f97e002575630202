package serialization

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// Checkpoint errors.
var (
	ErrChecksumMismatch   = errors.New("checkpoint data does not match its checksum")
	ErrHeaderTooLarge     = errors.New("checkpoint header exceeds maximum size")
	ErrInvalidMagic       = errors.New("not a .born checkpoint")
	ErrUnsupportedVersion = errors.New("unsupported checkpoint version")
	ErrTensorNotFound     = errors.New("tensor not in checkpoint")
)

// ValidationError describes a malformed tensor table.
type ValidationError struct {
	Reason  string // e.g. "offset_overlap", "out_of_bounds"
	Name    string // tensor involved, if any
	Other   string // second tensor of an overlap
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.Other != "":
		return fmt.Sprintf("%s: %q and %q: %s", e.Reason, e.Name, e.Other, e.Details)
	case e.Name != "":
		return fmt.Sprintf("%s: %q: %s", e.Reason, e.Name, e.Details)
	default:
		return fmt.Sprintf("%s: %s", e.Reason, e.Details)
	}
}

// checksum hashes a data section.
func checksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

func verifyChecksum(data []byte, stored [ChecksumSize]byte) error {
	if checksum(data) != stored {
		return ErrChecksumMismatch
	}
	return nil
}
