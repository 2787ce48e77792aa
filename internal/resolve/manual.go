// Package resolve turns trip addresses into business names through an
// ordered chain of sources: the operator-curated manual mapping, the
// persisted label cache, remote lookup providers, and keyword heuristics.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/miles-to-go/internal/model"
)

// ManualMap is the operator-curated address-to-business mapping, loaded
// from a JSON file. Entries here always win over every other source.
type ManualMap struct {
	entries map[string]string // normalized address -> label
	keys    []string          // normalized keys, longest first
}

// manualEntry is the structured form of a mapping value. The file also
// accepts plain strings, so older hand-edited files keep working.
type manualEntry struct {
	BusinessName string `json:"business_name"`
}

// LoadManualMap reads the mapping file at path. A missing file is not an
// error: lookups simply start with an empty manual tier. Keys beginning
// with an underscore are comments and are skipped.
func LoadManualMap(path string) (*ManualMap, error) {
	m := &ManualMap{entries: make(map[string]string)}
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("reading manual mapping %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manual mapping %s: %w", path, err)
	}

	for key, val := range raw {
		if strings.HasPrefix(key, "_") {
			continue
		}
		label, err := decodeManualValue(val)
		if err != nil {
			return nil, fmt.Errorf("manual mapping %s: entry %q: %w", path, key, err)
		}
		if label == "" {
			continue
		}
		m.entries[model.NormalizeAddress(key)] = label
	}

	m.rebuildKeys()
	return m, nil
}

func decodeManualValue(val json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var entry manualEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return "", fmt.Errorf("expected string or object with business_name: %w", err)
	}
	return strings.TrimSpace(entry.BusinessName), nil
}

// rebuildKeys orders keys longest first so containment matching prefers
// the most specific entry.
func (m *ManualMap) rebuildKeys() {
	m.keys = m.keys[:0]
	for k := range m.entries {
		m.keys = append(m.keys, k)
	}
	sort.Slice(m.keys, func(i, j int) bool {
		if len(m.keys[i]) != len(m.keys[j]) {
			return len(m.keys[i]) > len(m.keys[j])
		}
		return m.keys[i] < m.keys[j]
	})
}

// Get returns the manual label for an address. Exact normalized matches
// win; otherwise containment in either direction matches, because trip
// logs truncate and reformat the addresses operators write down.
func (m *ManualMap) Get(address string) (string, bool) {
	norm := model.NormalizeAddress(address)
	if norm == "" {
		return "", false
	}
	if label, ok := m.entries[norm]; ok {
		return label, true
	}
	for _, key := range m.keys {
		if strings.Contains(norm, key) || strings.Contains(key, norm) {
			return m.entries[key], true
		}
	}
	return "", false
}

// Set adds or replaces a manual entry in memory.
func (m *ManualMap) Set(address, label string) {
	m.entries[model.NormalizeAddress(address)] = label
	m.rebuildKeys()
}

// Delete removes a manual entry by address. It reports whether an entry
// was present.
func (m *ManualMap) Delete(address string) bool {
	norm := model.NormalizeAddress(address)
	if _, ok := m.entries[norm]; !ok {
		return false
	}
	delete(m.entries, norm)
	m.rebuildKeys()
	return true
}

// Len returns the number of manual entries.
func (m *ManualMap) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the mapping keyed by normalized address.
func (m *ManualMap) Entries() map[string]string {
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

// Save writes the mapping back to path atomically via a temp file rename,
// so an interrupted write never truncates the operator's file.
func (m *ManualMap) Save(path string) error {
	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manual mapping: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating mapping directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing manual mapping: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing manual mapping: %w", err)
	}
	return nil
}
