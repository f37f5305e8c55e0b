package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ResolveIndex turns the -i/--index flag value into a concrete continent
// manifest index. The sentinel -235 means "read it from the AWS Batch
// array-job environment variable" instead.
func ResolveIndex(flagIndex int, getenv func(string) string) (int, error) {
	if flagIndex != batchArrayIndexSentinel {
		return flagIndex, nil
	}

	raw := getenv(batchArrayIndexEnvVar)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is not set", ErrConfiguration, batchArrayIndexEnvVar)
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parsing %s=%q: %v", ErrConfiguration, batchArrayIndexEnvVar, raw, err)
	}
	return idx, nil
}

// ResolveContinent reads the continent manifest — a JSON array of
// single-key objects, one per batch-array task — and returns the
// upper-cased continent code at index.
func ResolveContinent(index int, manifestJSON []byte) (string, error) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(manifestJSON, &entries); err != nil {
		return "", fmt.Errorf("%w: parsing continent manifest: %v", ErrConfiguration, err)
	}
	if index < 0 || index >= len(entries) {
		return "", fmt.Errorf("%w: index %d out of range (manifest has %d entries)", ErrConfiguration, index, len(entries))
	}

	for key := range entries[index] {
		return strings.ToUpper(key), nil
	}
	return "", fmt.Errorf("%w: manifest entry %d has no continent key", ErrConfiguration, index)
}
