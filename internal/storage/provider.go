// Package storage defines the persistence file abstraction and atomic writes.
package storage

// Provider is the interface for the single notes file.
type Provider interface {
	// Path returns the absolute path of the backing file.
	Path() string
	// Read returns the raw bytes of the file. A missing file yields an
	// error matching os.ErrNotExist.
	Read() ([]byte, error)
	// Write atomically replaces the file with content.
	Write(content []byte) error
}
