// Package filemeta computes file metadata reports.
//
// For every input path it inspects the file (display name, size, creation
// time and an additive byte checksum), renders one line per file, and
// collects the lines in a concurrency-safe, de-duplicating, sorted
// Aggregator. Run fans the inspections out over a bounded worker pool or one
// goroutine per path, waits for all of them, and renders a single report
// whose order never depends on scheduling.
package filemeta
