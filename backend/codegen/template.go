// Package codegen provides core.CodeGenerator implementations.
package codegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/internal/util"
)

var templates = map[string]string{
	"javascript": `{{comment "//" .Prompt}}
function calculateResult(a, b) {
  return a + b;
}

// Example usage
const result = calculateResult(5, 3);
console.log('Result:', result);
`,
	"nodejs": `{{comment "//" .Prompt}}
const http = require('http');

const server = http.createServer((req, res) => {
  res.writeHead(200, { 'Content-Type': 'text/plain' });
  res.end('ok');
});

server.listen(3000);
`,
	"python": `{{comment "#" .Prompt}}
def calculate_result(a, b):
    return a + b


# Example usage
result = calculate_result(5, 3)
print(f"Result: {result}")
`,
	"react": `{{comment "//" .Prompt}}
import React, { useState } from 'react';

const Calculator = () => {
  const [result, setResult] = useState(0);
  return <div onClick={() => setResult(result + 1)}>Result: {result}</div>;
};

export default Calculator;
`,
	"html": `<!-- {{.Prompt}} -->
<!DOCTYPE html>
<html>
  <head><title>Generated</title></head>
  <body>
    <h1>Hello</h1>
  </body>
</html>
`,
	"css": `/* {{.Prompt}} */
body {
  margin: 0;
  font-family: sans-serif;
}
`,
	"cpp": `{{comment "//" .Prompt}}
#include <iostream>

int calculateResult(int a, int b) { return a + b; }

int main() {
    std::cout << "Result: " << calculateResult(5, 3) << std::endl;
    return 0;
}
`,
	"java": `{{comment "//" .Prompt}}
public class Main {
    static int calculateResult(int a, int b) {
        return a + b;
    }

    public static void main(String[] args) {
        System.out.println("Result: " + calculateResult(5, 3));
    }
}
`,
}

// TemplateOptions configure a Template generator.
type TemplateOptions struct {
	// Delay simulates generation latency. It is interrupted by the context.
	Delay time.Duration
}

// Template is a deterministic generator producing a fixed program per
// language with the prompt as a leading comment.
type Template struct {
	opts TemplateOptions
}

// NewTemplate creates a Template generator.
func NewTemplate(optFns ...func(o *TemplateOptions)) *Template {
	opts := TemplateOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Template{opts: opts}
}

// Generate implements core.CodeGenerator.
func (t *Template) Generate(ctx context.Context, prompt, language string) (core.GeneratedCode, error) {
	if err := util.Sleep(ctx, t.opts.Delay); err != nil {
		return core.GeneratedCode{}, err
	}
	tmpl, ok := templates[language]
	if !ok {
		return core.GeneratedCode{}, core.GenerationError(fmt.Errorf("no template for %q", language))
	}
	src, err := util.RenderTemplate(tmpl, map[string]any{"Prompt": strings.TrimSpace(prompt)})
	if err != nil {
		return core.GeneratedCode{}, core.GenerationError(err)
	}
	return core.GeneratedCode{Source: src}, nil
}
