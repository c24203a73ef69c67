package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/schemas"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// readRequests loads a request file holding one request object or an array of them
func readRequests(path string) ([]types.GenerationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	return parseRequests(data)
}

// parseRequests validates data against the request schema and decodes it.
func parseRequests(data []byte) ([]types.GenerationRequest, error) {
	if err := schemas.ValidateJSONString(schemas.RequestsSchema, string(data)); err != nil {
		return nil, &config.Error{Field: "requests", Message: "request file does not match schema", Cause: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []types.GenerationRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, &config.Error{Field: "requests", Message: "failed to decode requests", Cause: err}
		}
		return reqs, nil
	}

	var req types.GenerationRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, &config.Error{Field: "requests", Message: "failed to decode request", Cause: err}
	}
	return []types.GenerationRequest{req}, nil
}

// printJSON writes v as indented JSON to stdout
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
