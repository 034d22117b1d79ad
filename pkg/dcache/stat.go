package dcache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Checksum is one checksum record of a stored file.
type Checksum struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Stat is the subset of ada's stat output this tool reads:
// the labels attached to a file and its recorded checksums.
type Stat struct {
	Labels    []string   `json:"labels"`
	Checksums []Checksum `json:"checksums"`
}

func ParseStat(buf []byte) (Stat, error) {
	st := Stat{}
	if err := json.Unmarshal(buf, &st); err != nil {
		return Stat{}, fmt.Errorf("broken stat response: %w", err)
	}
	return st, nil
}

func (s Stat) HasLabel(label string) bool {
	for _, l := range s.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func (s Stat) ChecksumFor(typ string) (string, bool) {
	for _, c := range s.Checksums {
		if strings.EqualFold(c.Type, typ) {
			return c.Value, true
		}
	}
	return "", false
}

// ParseChecksumOutput extracts the algorithm=value pair from ada's checksum
// output. The pair is the second whitespace-delimited field of its line.
func ParseChecksumOutput(out string) (Checksum, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if typ, value, found := strings.Cut(fields[1], "="); found {
			return Checksum{Type: typ, Value: value}, nil
		}
	}
	return Checksum{}, fmt.Errorf("no checksum in output: %q", strings.TrimSpace(out))
}
