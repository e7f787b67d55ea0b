// Package conversation implements the append-only conversation log owned by
// a session. The log assigns every appended message a strictly increasing
// sequence number which defines the total order of the conversation; it is
// never reordered by wall-clock time.
//
// Transcripts can be exported as TOML for archival or debugging.
package conversation
