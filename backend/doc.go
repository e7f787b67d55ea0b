// Package backend groups the tool backends the engine invokes for jobs.
//
// Each sub package implements one of the core backend interfaces:
//
//   - codegen: core.CodeGenerator (deterministic templates, or an LLM via model.Model)
//   - convert: core.Converter (local text/markup/data conversions)
//   - ocr:     core.TextExtractor (static extraction result)
//
// Backends only ever see copies of validated input and must return promptly
// once their context is done.
package backend
