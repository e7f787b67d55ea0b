// Package artifact contains implementations of core.ArtifactStore, the store
// for bytes produced by successful jobs (converted files, generated source,
// extracted text).
//
// Artifacts are scoped by session and keyed by the id of the job that
// produced them. InMemoryStore serves tests and single process use;
// FileStore persists artifacts below a directory of any afero.Fs so the CLI
// can hand converted files to the user.
package artifact
