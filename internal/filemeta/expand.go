package filemeta

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
)

// expandDirectories replaces every directory in paths by the regular files
// below it. Other paths, including ones that cannot be stat'ed, are passed
// through so that the inspection reports them.
func expandDirectories(ctx context.Context, paths []string, log logrus.FieldLogger) ([]string, error) {
	out := make([]string, 0, len(paths))

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			out = append(out, path)

			continue
		}

		files, err := walkFiles(ctx, path, log)
		if err != nil {
			return nil, fmt.Errorf("expanding directory %q: %w", path, err)
		}

		log.WithFields(logrus.Fields{"dir": path, "files": len(files)}).Debug("expanded directory")

		out = append(out, files...)
	}

	return out, nil
}

// walkFiles lists the regular files below root in lexical order.
func walkFiles(ctx context.Context, root string, log logrus.FieldLogger) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.WithField("path", path).WithError(err).Debug("error accessing path")

			return nil // Silently skip errors
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.Type().IsRegular() {
			return nil
		}

		mu.Lock()
		files = append(files, path)
		mu.Unlock()

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}
