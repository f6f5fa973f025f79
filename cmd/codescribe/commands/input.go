package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// stdinName is the argument that selects standard input.
const stdinName = "-"

// utf8BOM prefixes files saved by some editors. It is not part of the code.
const utf8BOM = "\uFEFF"

var (
	// ErrDirectoryPath indicates a file operation was attempted on a directory.
	ErrDirectoryPath = errors.New("path points to a directory")
	// ErrEmptyPath indicates a path argument was empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL indicates the path contains a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
)

// source is one input document.
type source struct {
	// Name is the resolved file path, or empty for stdin.
	Name string
	Code string
}

// readSource reads args[0], or stdin when args is empty or "-".
func readSource(args []string, stdin io.Reader) (source, error) {
	if len(args) == 0 || args[0] == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return source{}, fmt.Errorf("read stdin: %w", err)
		}

		return source{Code: strings.TrimPrefix(string(data), utf8BOM)}, nil
	}

	data, resolved, err := safeReadFile(args[0])
	if err != nil {
		return source{}, err
	}

	return source{Name: resolved, Code: strings.TrimPrefix(string(data), utf8BOM)}, nil
}

func safeReadFile(path string) (content []byte, resolvedPath string, err error) {
	resolvedPath, err = resolveUserFilePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	//nolint:gosec // resolvedPath is normalized and existence/type checked in resolveUserFilePath.
	content, err = os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", resolvedPath, err)
	}

	return content, resolvedPath, nil
}

func resolveUserFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryPath, absPath)
	}

	return absPath, nil
}

// openOutput returns the writer for --output, or fallback when path is
// empty. The returned close function is never nil.
func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return fallback, func() error { return nil }, nil
	}

	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("create output %s: %w", path, err)
	}

	return file, file.Close, nil
}
