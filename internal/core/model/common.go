package model

// FileEvent represents a file system change notification
type FileEvent struct {
	Path      string
	Operation string
}
