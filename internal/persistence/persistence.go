package persistence

// Persistence bundles the record store and the history store so the engine
// can depend on a single abstraction. History stores share the record
// store's connection, so closing Records releases both.
type Persistence struct {
	Records RecordStore
	Events  EventStore
}

// NewInMemory returns a Persistence backed entirely by process memory.
func NewInMemory() Persistence {
	return Persistence{
		Records: NewInMemoryRecordStore(),
		Events:  NewInMemoryEventStore(),
	}
}

// Close closes the underlying record store.
func (p Persistence) Close() error {
	if p.Records == nil {
		return nil
	}
	return p.Records.Close()
}
