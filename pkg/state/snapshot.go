package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"calculette-hq/mtranspile/pkg/mlang/formula"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
)

// ErrNotFound is returned by Load when no snapshot has been saved.
var ErrNotFound = errors.New("state: no saved snapshot")

// Snapshot is the translation state of one run: the variable definitions
// and the formula and verification records. Reloading it skips symbol
// loading and translation.
type Snapshot struct {
	RunID          uuid.UUID                     `json:"run_id"`
	CreatedAt      time.Time                     `json:"created_at"`
	Application    string                        `json:"application"`
	SourceRevision string                        `json:"source_revision,omitempty"`
	Variables      []*symbols.Definition         `json:"variables"`
	Formulas       []*formula.Record             `json:"formulas"`
	Verifications  []*formula.VerificationRecord `json:"verifications"`
}

// NewSnapshot captures table and registry.
func NewSnapshot(runID uuid.UUID, application, revision string, table *symbols.Table, registry *formula.Registry) *Snapshot {
	return &Snapshot{
		RunID:          runID,
		CreatedAt:      time.Now().UTC(),
		Application:    application,
		SourceRevision: revision,
		Variables:      table.Definitions(),
		Formulas:       registry.Records(),
		Verifications:  registry.Verifications(),
	}
}

// Restore rebuilds the Symbol Table and the Registry.
func (s *Snapshot) Restore() (*symbols.Table, *formula.Registry, error) {
	table, err := symbols.FromDefinitions(s.Variables)
	if err != nil {
		return nil, nil, fmt.Errorf("restore variables: %w", err)
	}
	registry := formula.NewRegistry()
	for _, rec := range s.Formulas {
		if rec.Dependencies == nil {
			rec.Dependencies = formula.NewDependencySet()
		}
		if err := registry.Register(rec); err != nil {
			return nil, nil, fmt.Errorf("restore formulas: %w", err)
		}
	}
	for _, rec := range s.Verifications {
		registry.AddVerification(rec)
	}
	return table, registry, nil
}

// Marshal encodes the snapshot as JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal decodes a JSON snapshot. Numbers in variable metadata are
// kept as written.
func Unmarshal(data []byte) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
