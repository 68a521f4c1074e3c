package filemeta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ByteSum is a trivial additive checksum: the sum of every byte value in the
// input, wrapping modulo 2^32. It identifies accidental changes cheaply and
// offers no collision resistance.
type ByteSum uint32

// Add folds one byte into the sum.
func (s *ByteSum) Add(b byte) {
	*s += ByteSum(b)
}

// Write implements io.Writer.
func (s *ByteSum) Write(p []byte) (int, error) {
	for _, b := range p {
		s.Add(b)
	}

	return len(p), nil
}

// Sum32 returns the current value.
func (s ByteSum) Sum32() uint32 {
	return uint32(s)
}

// SumReader streams r one byte at a time until EOF and returns the byte sum.
func SumReader(r io.Reader) (uint32, error) {
	var (
		sum ByteSum
		br  = bufio.NewReader(r)
	)

	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return sum.Sum32(), nil
		}

		if err != nil {
			return 0, err
		}

		sum.Add(b)
	}
}

// SumFile opens path read-only and returns the byte sum of its contents.
// Any failure is reported as ErrChecksumUnavailable with the checksum 0.
func SumFile(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrChecksumUnavailable, err)
	}
	defer f.Close()

	sum, err := SumReader(f)
	if err != nil {
		return 0, fmt.Errorf("%w: reading %q: %w", ErrChecksumUnavailable, path, err)
	}

	return sum, nil
}
