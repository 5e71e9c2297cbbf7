package gds

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// gzipMagic is the two-byte header of a gzip stream.
var gzipMagic = []byte{0x1F, 0x8B}

// ReadFile decodes the library stored at path. Gzip-compressed streams
// (the common .gds.gz interchange form) are detected by content, not by
// extension, and decompressed transparently.
func ReadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, err
		}
	}
	return Decode(data)
}

// WriteFile encodes lib to path. A path ending in .gz is written
// gzip-compressed.
func WriteFile(path string, lib *Library) error {
	data, err := Encode(lib)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".gz") {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	return os.WriteFile(path, data, 0o644)
}
