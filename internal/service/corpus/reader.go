package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// ReadText maps path read-only and returns its contents as a string
func ReadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open corpus %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat corpus %s: %w", path, err)
	}
	// An empty file cannot be mapped
	if info.Size() == 0 {
		return "", nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return "", fmt.Errorf("failed to map corpus %s: %w", path, err)
	}
	defer m.Unmap()

	// string() copies, so the result outlives the mapping
	return string(m), nil
}

// LoadTokens reads path and splits it on whitespace
func LoadTokens(path string) ([]string, error) {
	text, err := ReadText(path)
	if err != nil {
		return nil, err
	}
	return strings.Fields(text), nil
}

// LoadDir concatenates every .txt file under root in lexical path order,
// separated by a single space. Files are read by numWorkers goroutines.
func LoadDir(root string, numWorkers int) (string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".txt") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(paths)

	if numWorkers < 1 {
		numWorkers = 1
	}

	// Each worker writes only its own slots, so texts needs no lock
	texts := make([]string, len(paths))
	errs := make([]error, len(paths))
	workQueue := make(chan int, numWorkers)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workQueue {
				texts[i], errs[i] = ReadText(paths[i])
			}
		}()
	}
	for i := range paths {
		workQueue <- i
	}
	close(workQueue)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, text := range texts {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
