package record

// ModelRecord is a named group of simulations.
type ModelRecord struct {
	Name string
	Dir  string
	Sims []*SimRecord

	status ModelStatus
}

// Status returns the model's current classification.
func (m *ModelRecord) Status() ModelStatus { return m.status }

// Finalize finalizes every sim, then sets SUCCESS iff all of them succeeded.
func (m *ModelRecord) Finalize() ModelStatus {
	m.status = ModelSuccess
	for _, s := range m.Sims {
		if s.Finalize() != SimSuccess {
			m.status = ModelSimFail
		}
	}
	return m.status
}
