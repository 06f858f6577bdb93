package assistant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona is the assistant's prompt spec, loaded from a YAML file so the
// system instruction can be edited without a rebuild.
type Persona struct {
	Name        string  `yaml:"name"`
	System      string  `yaml:"system"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	// Greeting seeds every new transcript.
	Greeting string `yaml:"greeting"`
	// ErrorReply is appended to the transcript when the remote call fails.
	ErrorReply string `yaml:"error_reply"`
}

const defaultErrorReply = "I'm currently experiencing high traffic or a connection issue. Please try again later."

func LoadPersona(path string) (*Persona, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Persona
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("failed to parse persona spec: %w", err)
	}
	if p.System == "" {
		return nil, fmt.Errorf("persona spec %s has no system instruction", path)
	}
	if p.Temperature <= 0 {
		p.Temperature = 0.7
	}
	if p.ErrorReply == "" {
		p.ErrorReply = defaultErrorReply
	}
	return &p, nil
}
