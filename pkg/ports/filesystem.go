package ports

// FileSystem abstracts the file operations used for story input, visual
// assets and compiled output.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces a file with data, creating parent directories.
	// Readers never observe a partially written file.
	WriteFile(path string, data []byte) error

	// CreateTemp writes data to a new temporary file and returns its path.
	// pattern follows os.CreateTemp; the caller removes the file.
	CreateTemp(pattern string, data []byte) (string, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
