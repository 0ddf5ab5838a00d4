package types

// Store persists a whole Document. Backends implement it; the storage
// engine is its only caller.
type Store interface {
	// Read returns the persisted document. A store that has never been
	// written returns an empty document and no error. A document that
	// cannot be decoded returns an error matching ErrCorruptStore.
	Read() (Document, error)

	// Write replaces the persisted document. The replacement is atomic: a
	// concurrent reader sees either the old or the new document in full.
	Write(doc Document) error

	// Location describes where the document lives, for logs and errors.
	Location() string

	// Close releases backend resources. Idempotent.
	Close() error
}
