package mesh

// ProvenanceSchemaVersion identifies the current StageRecord layout.
// Bump when fields change meaning so stored records stay interpretable.
const ProvenanceSchemaVersion = 1

// StageRecord documents one operation applied to a mesh: which operation
// ran, which strategy was selected and which actually executed, and which
// backing library did the work.
type StageRecord struct {
	Op       string `json:"op"`                 // operation name, e.g. "fill_holes"
	Selected string `json:"selected,omitempty"` // strategy the caller asked for
	Actual   string `json:"actual,omitempty"`   // strategy that actually executed
	Backend  string `json:"backend,omitempty"`  // library/capability that did the work
	Note     string `json:"note,omitempty"`     // free-form detail (fallback reason etc.)
}

// Provenance is the structured, versioned record of how a mesh value was
// produced. It replaces free-form metadata maps: every entry has explicit
// fields rather than stringly-typed keys.
type Provenance struct {
	SchemaVersion int           `json:"schema_version"`
	Stages        []StageRecord `json:"stages,omitempty"`
}

// Clone returns an independent copy. Backends that rebuild a mesh in a
// foreign representation use this to carry history across the conversion.
func (p Provenance) Clone() Provenance {
	c := Provenance{SchemaVersion: p.SchemaVersion}
	if len(p.Stages) > 0 {
		c.Stages = make([]StageRecord, len(p.Stages))
		copy(c.Stages, p.Stages)
	}
	return c
}

// Record appends a stage record, initializing the schema version on first use.
func (m *Mesh) Record(rec StageRecord) {
	if m.Provenance.SchemaVersion == 0 {
		m.Provenance.SchemaVersion = ProvenanceSchemaVersion
	}
	m.Provenance.Stages = append(m.Provenance.Stages, rec)
}

// LastStage returns the most recent stage record, or a zero record if none.
func (m *Mesh) LastStage() StageRecord {
	if len(m.Provenance.Stages) == 0 {
		return StageRecord{}
	}
	return m.Provenance.Stages[len(m.Provenance.Stages)-1]
}
