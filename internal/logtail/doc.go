// Package logtail reads the end of the client's log file and turns its JSON
// lines into short human readable ones for the log overlay.
//
// Read keeps a ring buffer of the last maxLines lines, so the file is scanned
// once and memory stays proportional to the lines returned. A missing file is
// not an error; the overlay simply shows nothing.
//
// Format expects the JSON written by package logging:
//
//	{"severity":"WARN","timestamp":"2026-10-14T09:12:03.5Z","message":"fetch products","error":"timeout"}
//
// and renders it as
//
//	09:12:03 WARN  fetch products error=timeout
//
// Lines that are not JSON objects pass through unchanged.
package logtail
