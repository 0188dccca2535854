package lexicon

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// LoadFile reads a YAML lexicon from path. An empty path returns [Default].
func LoadFile(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open %q: %w", path, err)
	}
	defer f.Close()

	l, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("lexicon: parse %q: %w", path, err)
	}
	return l, nil
}

// LoadFromReader decodes a YAML lexicon from r and validates it. Unknown
// keys are rejected so that typos in a tuning file fail loudly.
func LoadFromReader(r io.Reader) (*Lexicon, error) {
	l := &Lexicon{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(l); err != nil {
		return nil, fmt.Errorf("lexicon: decode yaml: %w", err)
	}
	if err := validate.Struct(l); err != nil {
		return nil, fmt.Errorf("lexicon: validation failed: %w", err)
	}
	l.index()
	return l, nil
}
