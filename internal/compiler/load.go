package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Sentinel errors returned by LoadDir.
var (
	ErrSpecsNotFound = errors.New("specs directory not found")
	ErrNoCUEFiles    = errors.New("no CUE files found")
	ErrLoadFailed    = errors.New("loading CUE files failed")
)

// LoadDir builds the CUE package in dir and returns its value together with
// the number of .cue files found beneath dir.
func LoadDir(dir string) (cue.Value, int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return cue.Value{}, 0, fmt.Errorf("%w: %s", ErrSpecsNotFound, dir)
	}
	if err != nil {
		return cue.Value{}, 0, fmt.Errorf("specs directory: %w", err)
	}
	if !info.IsDir() {
		return cue.Value{}, 0, fmt.Errorf("%w: not a directory: %s", ErrSpecsNotFound, dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return cue.Value{}, 0, fmt.Errorf("%w in %s", ErrNoCUEFiles, dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, len(files), fmt.Errorf("%w: no instances in %s", ErrLoadFailed, dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, len(files), fmt.Errorf("%w: %v", ErrLoadFailed, inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, len(files), formatCUEError(err)
	}
	return value, len(files), nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// CompileDir loads dir and compiles its definitions.
func CompileDir(dir string) (*Definitions, error) {
	v, _, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return Compile(v)
}
