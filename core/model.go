package core

import "slices"

// Responder models a session can select. The set is closed; DefaultModel is
// used until a session picks another one.
var Models = []string{"gpt-4", "claude", "gemini", "qwen", "deepseek"}

// DefaultModel is the responder model of a new session.
const DefaultModel = "gpt-4"

// ValidModel reports whether m is one of Models.
func ValidModel(m string) bool { return slices.Contains(Models, m) }
