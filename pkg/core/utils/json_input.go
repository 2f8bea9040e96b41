package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// DecodeLenient decodes a hand-written valuation payload into dst.
// Order of attempts:
// 1. Standard JSON
// 2. Hjson (comments, unquoted keys, optional commas)
// 3. JSON repair (unclosed brackets, single quotes, trailing commas)
//
// Every strategy ends in encoding/json so struct tags apply uniformly.
func DecodeLenient(input []byte, dst interface{}) error {
	// Try 1: Standard JSON
	strictErr := json.Unmarshal(input, dst)
	if strictErr == nil {
		return nil
	}
	if _, isType := strictErr.(*json.UnmarshalTypeError); isType {
		// Well-formed but wrong shape; leniency will not help.
		return fmt.Errorf("invalid payload: %w", strictErr)
	}

	// Try 2: Hjson
	if normalized, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal(normalized, dst); err == nil {
			return nil
		}
	}

	// Try 3: JSON Repair
	if repaired, err := jsonrepair.RepairJSON(string(input)); err == nil {
		if err := json.Unmarshal([]byte(repaired), dst); err == nil {
			return nil
		}
	}

	return fmt.Errorf("invalid payload: %w", strictErr)
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
func ParseHJSON(hjsonData []byte) ([]byte, error) {
	var result interface{}
	if err := hjson.Unmarshal(hjsonData, &result); err != nil {
		return nil, fmt.Errorf("hjson parse: %w", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return jsonBytes, nil
}
