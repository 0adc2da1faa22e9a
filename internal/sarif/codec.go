package sarif

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression selects how a log file is (de)compressed.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// CompressionFor picks the compression implied by a file name.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// ParseCompression parses a compression name from config or flags.
func ParseCompression(s string) (Compression, error) {
	switch Compression(strings.ToLower(s)) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip, "gz":
		return CompressionGzip, nil
	case CompressionZstd, "zst":
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q", s)
	}
}

// Decode reads a SARIF log from r.
func Decode(r io.Reader) (*Log, error) {
	var log Log
	dec := json.NewDecoder(r)
	if err := dec.Decode(&log); err != nil {
		return nil, fmt.Errorf("failed to parse SARIF: %w", err)
	}
	if log.Version != Version {
		return nil, &VersionError{Got: log.Version}
	}
	for i := range log.Runs {
		dropEmptyRegions(log.Runs[i].Results)
	}
	return &log, nil
}

// Encode writes log to w as JSON, indented when asked. A missing $schema is
// filled in on the way out.
func Encode(w io.Writer, log *Log, indent bool) error {
	out := *log
	if out.Schema == "" {
		out.Schema = SchemaURI
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("failed to write SARIF: %w", err)
	}
	return nil
}

// ReadFile reads a SARIF log, decompressing it when the file name ends in
// .gz or .zst.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFrom(bufio.NewReader(f), CompressionFor(path))
}

// ReadFrom decodes a log from r after undoing compression c.
func ReadFrom(r io.Reader, c Compression) (*Log, error) {
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return Decode(r)
}

// WriteTo encodes log to w using the given compression.
func WriteTo(w io.Writer, log *Log, c Compression, indent bool) error {
	switch c {
	case CompressionGzip:
		gz := gzip.NewWriter(w)
		if err := Encode(gz, log, indent); err != nil {
			_ = gz.Close()
			return err
		}
		return gz.Close()
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to open zstd stream: %w", err)
		}
		if err := Encode(zw, log, indent); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	default:
		return Encode(w, log, indent)
	}
}

// WriteFile writes log to path, compressing it when the file name asks for it.
func WriteFile(path string, log *Log, indent bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := WriteTo(bw, log, CompressionFor(path), indent); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// VersionError is returned for logs that are not SARIF 2.1.0.
type VersionError struct {
	Got string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported SARIF version %q (want %s)", e.Got, Version)
}

func dropEmptyRegions(results []Result) {
	for i := range results {
		for j := range results[i].Locations {
			pl := results[i].Locations[j].PhysicalLocation
			if pl == nil {
				continue
			}
			if pl.Region != nil && pl.Region.IsEmpty() {
				pl.Region = nil
			}
			if pl.ContextRegion != nil && pl.ContextRegion.IsEmpty() {
				pl.ContextRegion = nil
			}
		}
	}
}

// The UnmarshalJSON methods below apply the SARIF defaults for members that
// default to -1 before decoding, so an absent index stays distinguishable
// from index 0.

func (a *ArtifactLocation) UnmarshalJSON(data []byte) error {
	type plain ArtifactLocation
	p := plain(NewArtifactLocation())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = ArtifactLocation(p)
	return nil
}

func (r *Region) UnmarshalJSON(data []byte) error {
	type plain Region
	p := plain(NewRegion())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Region(p)
	return nil
}

func (l *LogicalLocation) UnmarshalJSON(data []byte) error {
	type plain LogicalLocation
	p := plain(NewLogicalLocation())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = LogicalLocation(p)
	return nil
}

func (l *Location) UnmarshalJSON(data []byte) error {
	type plain Location
	p := plain(NewLocation())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Location(p)
	return nil
}

func (d *ReportingDescriptorReference) UnmarshalJSON(data []byte) error {
	type plain ReportingDescriptorReference
	p := plain(NewRuleReference())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = ReportingDescriptorReference(p)
	return nil
}

func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	p := plain(NewResult())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Result(p)
	return nil
}
