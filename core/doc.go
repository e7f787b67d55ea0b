// Package core provides the foundational domain types, interfaces and error
// taxonomy used by toolmesh. It defines the core abstractions for:
//
//   - Messages (immutable entries of the append-only conversation log)
//   - Jobs (one lifecycle record per tool invocation) and their state machine
//   - Tool inputs (raw user input and its validated, tool specific form)
//   - Backend capabilities (default responder, code generation, file
//     conversion, text extraction) reached only through narrow interfaces
//   - Pluggable stores for artifacts and archived conversation history
//
// The package intentionally keeps orchestration (dispatching, scheduling,
// result merging) out of scope, exposing small interfaces so the engine and
// concrete backends can evolve independently.
package core
