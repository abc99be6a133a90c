package web

import (
	"compress/gzip"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// CompressionOptions controls response compression.
type CompressionOptions struct {
	Enabled bool
	Level   string // fastest, default, best or none
	MinSize int    // responses smaller than this are sent uncompressed
}

// newCompressionHandler wraps h with gzip/zstd compression. It returns h
// unchanged when compression is off.
func newCompressionHandler(h http.Handler, opts CompressionOptions) http.Handler {
	if !opts.Enabled || opts.Level == "none" {
		return h
	}

	level := gzip.DefaultCompression
	switch opts.Level {
	case "fastest":
		level = gzip.BestSpeed
	case "best":
		level = gzip.BestCompression
	}

	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(opts.MinSize),
		gzhttp.CompressionLevel(level),
	)
	if err != nil {
		return h
	}
	return wrapper(h)
}
