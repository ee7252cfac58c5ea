package tui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// previewLimit caps how much of a file is read for the preview pane.
const previewLimit = 64 * types.KiB

// loadPreview returns the text shown in the preview pane for path. Binary
// content is summarized rather than displayed.
func loadPreview(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, previewLimit+1))
	if err != nil {
		return "", err
	}

	truncated := int64(len(data)) > previewLimit
	if truncated {
		data = data[:previewLimit]
	}

	if isBinary(data, truncated) {
		info, err := f.Stat()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(binary file, %s)", types.FormatSize(info.Size())), nil
	}

	text := strings.ReplaceAll(string(data), "\t", "    ")
	if truncated {
		text += fmt.Sprintf("\n… (truncated at %s)", types.FormatSize(previewLimit))
	}
	return text, nil
}

// isBinary reports whether data looks like something other than text.
// truncated says data was cut at the read limit, where a multi-byte rune
// may be split.
func isBinary(data []byte, truncated bool) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}
	if truncated && len(data) > utf8.UTFMax {
		data = data[:len(data)-utf8.UTFMax]
	}
	return !utf8.Valid(data)
}
