package artifacts

type ArtifactKind string

// BinaryArtifact is a file produced by the build tool.
const BinaryArtifact ArtifactKind = "binary"

// Artifact is a verified file on disk produced for one configuration.
type Artifact struct {
	Configuration string       `json:"configuration"`
	Kind          ArtifactKind `json:"kind"`
	Path          string       `json:"path"`
	Size          int64        `json:"size"`
	Checksum      string       `json:"sha256,omitempty"`
}
