// Package history contains implementations of core.HistoryStore, the archive
// of ended conversations shown in the chat history list.
//
// InMemoryStore keeps conversations for the lifetime of the process.
// FileStore persists them in a versioned TOML file so the history survives
// restarts of the CLI.
package history
