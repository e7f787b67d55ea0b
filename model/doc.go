// Package model defines the provider agnostic abstraction toolmesh uses to
// talk to language models.
//
// Two consumers exist: the default responder (responder.ModelResponder),
// which answers free text that targets no tool, and the LLM backed code
// generator (backend/codegen.ModelGenerator). Both only need plain text in
// and plain text out, so Request and Response are deliberately small.
//
// Providers (openai, anthropic, gemini) implement Model in sub packages so higher
// layers stay decoupled from vendor SDKs. MockModel serves tests.
package model
