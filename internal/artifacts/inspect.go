package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Inspect verifies that path is a regular file and returns it as a binary artifact
// for the configuration, with its size and SHA-256 checksum.
func Inspect(configuration, path string) (Artifact, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("resolve artifact path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return Artifact{}, err
	}
	if !info.Mode().IsRegular() {
		return Artifact{}, fmt.Errorf("%s is not a regular file", absPath)
	}

	checksum, err := Checksum(absPath)
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Configuration: configuration,
		Kind:          BinaryArtifact,
		Path:          absPath,
		Size:          info.Size(),
		Checksum:      checksum,
	}, nil
}

// Checksum returns the hex encoded SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
