package core

// ArtifactStore keeps the bytes produced by successful jobs (converted files,
// generated source) so a presentation layer can offer them for download.
// Artifacts are scoped by session; the artifact id of a job result is the job
// id. Implementations must be safe for concurrent use.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}
