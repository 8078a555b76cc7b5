package fsops

// Deleter abstracts filesystem delete operations
// Enables mocking in tests to prove which files a run removes
type Deleter interface {
	Remove(path string) error
}
