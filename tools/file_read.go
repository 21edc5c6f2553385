package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaiwat-s/relayd/core"
)

// FileRead reads text files under a configured set of allowed directories.
type FileRead struct {
	allowed []string
}

type fileReadArgs struct {
	Path string `json:"path"`
}

// NewFileRead resolves each allowed directory to an absolute path up front
// so the later prefix check compares resolved paths on both sides.
func NewFileRead(allowedDirs []string) *FileRead {
	resolved := make([]string, 0, len(allowedDirs))
	for _, dir := range allowedDirs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		resolved = append(resolved, abs)
	}
	return &FileRead{allowed: resolved}
}

func (t *FileRead) Name() string {
	return "file_read"
}

func (t *FileRead) Description() string {
	return "Read a text file from an allowlisted directory"
}

func (t *FileRead) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Path of the file to read"
			}
		},
		"required": ["path"]
	}`)
}

func (t *FileRead) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params fileReadArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if params.Path == "" {
		return "", fmt.Errorf("%w: path is required", core.ErrValidation)
	}

	// Resolve before the allowlist check: a raw relative path could
	// lexically start with an allowed prefix while escaping it.
	abs, err := filepath.Abs(params.Path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	if !t.isAllowed(abs) {
		return "", fmt.Errorf("%w: allowed dirs: %s", core.ErrAllowlist, strings.Join(t.allowed, ", "))
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	return truncate(string(data), maxOutput), nil
}

func (t *FileRead) isAllowed(abs string) bool {
	for _, dir := range t.allowed {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
