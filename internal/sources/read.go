package sources

import (
	"fmt"
	"os"

	"bennypowers.dev/cssaudit/internal/log"
	"github.com/edsrzf/mmap-go"
)

// Read returns the contents of a file. The file is memory-mapped and copied
// out before unmapping; when mapping fails it falls back to os.ReadFile.
func Read(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	// Handle empty files (can't mmap zero bytes)
	if stat.Size() == 0 {
		return []byte{}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		log.Debug("mmap failed for %s, falling back to os.ReadFile: %v", path, err)
		return os.ReadFile(path)
	}
	defer func() { _ = data.Unmap() }()

	content := make([]byte, len(data))
	copy(content, data)
	return content, nil
}
