package filemeta

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Inspector computes a Descriptor for a file path.
// The zero value is usable and reports times in time.Local.
type Inspector struct {
	// Location is the time zone creation times are converted to (nil = time.Local).
	Location *time.Location
	// Logger receives debug output for degraded checksums (nil = discard).
	Logger logrus.FieldLogger
}

// Inspect opens path for shared reading, queries its size and creation time,
// and computes its checksum from an independent read of the file.
//
// A failed open yields ErrPathUnreadable and a failed size or time query
// yields ErrMetadataQuery. A checksum that cannot be computed does not fail
// the inspection: the descriptor carries a zero checksum with ChecksumOK unset.
func (i Inspector) Inspect(path string) (Descriptor, error) {
	desc := Descriptor{Name: DisplayName(path)}

	f, err := os.Open(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrPathUnreadable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: size of %q: %w", ErrMetadataQuery, path, err)
	}

	if !info.Mode().IsRegular() {
		return Descriptor{}, fmt.Errorf("%w: %q is not a regular file", ErrPathUnreadable, path)
	}

	desc.Size = uint64(info.Size()) //nolint:gosec // Regular file sizes are never negative.

	created, err := birthTime(f, info)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: creation time of %q: %w", ErrMetadataQuery, path, err)
	}

	desc.Created = created.In(i.location())

	sum, err := SumFile(path)
	if err != nil {
		i.logger().WithField("path", path).WithError(err).Debug("checksum unavailable, reporting 0")
	}

	desc.Checksum = sum
	desc.ChecksumOK = err == nil

	return desc, nil
}

func (i Inspector) location() *time.Location {
	if i.Location == nil {
		return time.Local
	}

	return i.Location
}

func (i Inspector) logger() logrus.FieldLogger {
	return loggerOrDiscard(i.Logger)
}
