package filesystem

import "os"

// FileSystem is the slice of the OS the script stage touches, so tests can
// substitute failing or recording implementations.
type FileSystem interface {
	ReadFile(name string) (string, error)
	WriteFile(name string, content string) error
}

type DefaultFileSystem struct{}

func (fs DefaultFileSystem) ReadFile(name string) (string, error) {
	content, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// WriteFile creates or truncates name and writes content unchanged.
func (fs DefaultFileSystem) WriteFile(name string, content string) error {
	return os.WriteFile(name, []byte(content), 0644)
}
