package script

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var ErrRuntimeNotFound = errors.New("script interpreter not found")

// RuntimeResolver locates the interpreter used to run generated scripts.
type RuntimeResolver interface {
	Resolve() (string, error)
}

// PathResolver searches PATH for each name in order and returns the first
// hit, so Names[0] is the primary interpreter and the rest are fallbacks.
type PathResolver struct {
	Names    []string
	LookPath func(file string) (string, error)
}

func NewPathResolver(names ...string) *PathResolver {
	return &PathResolver{
		Names:    names,
		LookPath: exec.LookPath,
	}
}

func (r *PathResolver) Resolve() (string, error) {
	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	for _, name := range r.Names {
		path, err := lookPath(name)
		if err == nil && path != "" {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrRuntimeNotFound, strings.Join(r.Names, ", "))
}
