package config

import (
	"encoding/json"
	"fmt"
)

// ParseReachSubset decodes the -u/--subsetfile JSON list of reach
// identifiers to restrict a run to.
func ParseReachSubset(data []byte) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("%w: parsing reach subset file: %v", ErrConfiguration, err)
	}
	return ids, nil
}

// ParsePassList decodes the -a/--passlist JSON list of pass numbers to
// restrict a run to. Pass numbers are read as strings since they are
// filename components, not arithmetic quantities.
func ParsePassList(data []byte) ([]string, error) {
	var passes []string
	if err := json.Unmarshal(data, &passes); err != nil {
		return nil, fmt.Errorf("%w: parsing pass list file: %v", ErrConfiguration, err)
	}
	return passes, nil
}
