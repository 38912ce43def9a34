package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validate checks a response body against s. A nil schema accepts
// anything. Failures are *ErrInvalidResponse carrying the body.
func (s *Schema) Validate(body []byte) error {
	if s == nil {
		return nil
	}

	compiled, err := s.compile()
	if err != nil {
		return &ErrInvalidResponse{Body: body, Err: err}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return &ErrInvalidResponse{Body: body, Err: fmt.Errorf("decode %s body: %w", s.Name, err)}
	}
	if err := compiled.Validate(doc); err != nil {
		return &ErrInvalidResponse{Body: body, Err: fmt.Errorf("%s: %w", s.Name, err)}
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		// The compiler needs json.Number numerics, which only its own
		// decoder produces.
		raw, err := json.Marshal(s.Definition)
		if err != nil {
			s.err = fmt.Errorf("encode %s schema: %w", s.Name, err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			s.err = fmt.Errorf("decode %s schema: %w", s.Name, err)
			return
		}

		url := "mem://hemoscan/" + s.Name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, def); err != nil {
			s.err = fmt.Errorf("load %s schema: %w", s.Name, err)
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}
