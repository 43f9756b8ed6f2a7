package util

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// headSampleSize is how many leading bytes participate in the fingerprint.
// The head of an append-only log never changes, so the fingerprint is stable
// across appends but flips when the file is replaced or rewritten.
const headSampleSize = 4096

// CalculateFileFingerprint calculates an xxhash fingerprint of the first 4KB of a file
func CalculateFileFingerprint(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}

	readSize := int64(headSampleSize)
	if stat.Size() < readSize {
		readSize = stat.Size()
	}

	data := make([]byte, readSize)
	if _, err := io.ReadFull(file, data); err != nil && err != io.EOF {
		return "", err
	}

	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}
