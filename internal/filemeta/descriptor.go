package filemeta

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// sizeFormat groups digits by three with a space and drops the fraction.
const sizeFormat = "# ###."

// Descriptor represents the metadata computed for a single file.
type Descriptor struct {
	// Name is the file name without any directory components.
	Name string `json:"name"`
	// Size is the size in bytes as reported by the filesystem.
	Size uint64 `json:"size"`
	// Created is the creation time, already converted to the report location.
	Created time.Time `json:"created"`
	// Checksum is the additive byte sum of the file contents.
	Checksum uint32 `json:"checksum"`
	// ChecksumOK is false when the contents could not be read and Checksum is 0.
	ChecksumOK bool `json:"checksum_ok"`
}

// Line renders the descriptor in its canonical form. The result depends only
// on the descriptor fields and is used both for display and as the sort and
// de-duplication key in the Aggregator.
func (d Descriptor) Line() string {
	var b strings.Builder

	b.WriteString(d.Name)
	b.WriteString(";   size: ")
	b.WriteString(FormatSize(d.Size))
	b.WriteString(" KB;   creation time: ")
	b.WriteString(FormatTimestamp(d.Created))
	b.WriteString("   checksum: ")
	b.WriteString(strconv.FormatUint(uint64(d.Checksum), 10))

	return b.String()
}

// FormatSize renders n with a space every three digits from the right,
// independent of the current locale (1234567 -> "1 234 567").
func FormatSize(n uint64) string {
	return humanize.FormatInteger(sizeFormat, int(n)) //nolint:gosec // File sizes fit in an int.
}

// FormatTimestamp renders t as MM/DD/YYYY HH:MM on a 24-hour clock.
// The year is not zero padded.
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%d %02d:%02d", int(t.Month()), t.Day(), t.Year(), t.Hour(), t.Minute())
}

// DisplayName returns the part of path after the last '/' or '\'.
// A path without a separator is returned unchanged.
func DisplayName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}

	return path
}
