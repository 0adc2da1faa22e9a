package sarif

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLog = `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "lint", "rules": [{"id": "R1"}]}},
    "results": [{
      "ruleId": "R1",
      "message": {"text": "unused variable", "arguments": ["x"]},
      "locations": [{
        "physicalLocation": {
          "artifactLocation": {"uri": "src/a.go", "uriBaseId": "%SRCROOT%"},
          "region": {"startLine": 0, "startColumn": 0}
        }
      }, {
        "physicalLocation": {
          "artifactLocation": {"uri": "src/b.go", "index": 0},
          "region": {"startLine": 4, "startColumn": 2}
        }
      }],
      "properties": {"confidence": 0.9, "tags": ["a", "b"], "note": "hi", "flag": true, "nothing": null, "obj": {"k": 1}}
    }]
  }]
}`

func TestDecode(t *testing.T) {
	log, err := Decode(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(log.Runs) != 1 || len(log.Runs[0].Results) != 1 {
		t.Fatalf("unexpected shape: %+v", log)
	}
	r := log.Runs[0].Results[0]

	if r.RuleIndex != NoIndex {
		t.Errorf("RuleIndex = %d, want %d", r.RuleIndex, NoIndex)
	}
	if r.Rank != NoRank {
		t.Errorf("Rank = %v, want %v", r.Rank, NoRank)
	}
	if len(r.Locations) != 2 {
		t.Fatalf("len(Locations) = %d, want 2", len(r.Locations))
	}

	first := r.Locations[0]
	if first.ID != NoIndex {
		t.Errorf("Location.ID = %d, want %d", first.ID, NoIndex)
	}
	if first.PhysicalLocation.ArtifactLocation.Index != NoIndex {
		t.Errorf("absent index = %d, want %d", first.PhysicalLocation.ArtifactLocation.Index, NoIndex)
	}
	if first.PhysicalLocation.Region != nil {
		t.Error("a 0:0 region should be dropped")
	}

	second := r.Locations[1]
	if second.PhysicalLocation.ArtifactLocation.Index != 0 {
		t.Errorf("explicit index = %d, want 0", second.PhysicalLocation.ArtifactLocation.Index)
	}
	reg := second.PhysicalLocation.Region
	if reg == nil || reg.StartLine != 4 || reg.CharOffset != NoIndex {
		t.Errorf("region = %+v, want startLine 4 and unset charOffset", reg)
	}

	wantKinds := map[string]ValueKind{
		"confidence": KindNumber,
		"tags":       KindArray,
		"note":       KindString,
		"flag":       KindBool,
		"nothing":    KindNull,
		"obj":        KindObject,
	}
	for k, want := range wantKinds {
		if got := r.Properties[k].Kind; got != want {
			t.Errorf("Properties[%s].Kind = %v, want %v", k, got, want)
		}
	}
	if got := r.Properties["tags"].Serialized; got != `["a","b"]` {
		t.Errorf("tags serialized = %q, want compact form", got)
	}
	if s, ok := r.Properties.GetString("note"); !ok || s != "hi" {
		t.Errorf("GetString(note) = %q, %v", s, ok)
	}
}

func TestDecode_RejectsOtherVersions(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"version": "2.0.0", "runs": []}`))
	var verr *VersionError
	if !errors.As(err, &verr) {
		t.Fatalf("expected VersionError, got %v", err)
	}
	if verr.Got != "2.0.0" {
		t.Errorf("Got = %q, want 2.0.0", verr.Got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"version": `)); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestEncode_RoundTripKeepsProperties(t *testing.T) {
	log, err := Decode(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, log, false); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"$schema":"`+SchemaURI+`"`) {
		t.Error("encoded log should carry the schema")
	}
	if log.Schema != "" {
		t.Error("Encode must not modify the log")
	}
	if !strings.Contains(buf.String(), `"obj":{"k":1}`) {
		t.Errorf("object property not written verbatim: %s", buf.String())
	}

	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("re-Decode failed: %v", err)
	}
	if got := again.Runs[0].Results[0].Properties["confidence"]; got.Serialized != "0.9" || got.Kind != KindNumber {
		t.Errorf("confidence = %+v after round trip", got)
	}
}

func TestFiles_Compression(t *testing.T) {
	log, err := Decode(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	dir := t.TempDir()
	for _, name := range []string{"out.sarif", "out.sarif.gz", "out.sarif.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, log, true); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if got.Runs[0].DriverName() != "lint" {
				t.Errorf("driver = %q, want lint", got.Runs[0].DriverName())
			}
		})
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"GZIP", CompressionGzip, false},
		{"zst", CompressionZstd, false},
		{"brotli", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCompression(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCompression(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileURI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/home/me/repo/", "file:///home/me/repo/"},
		{`C:\src\proj\a.c`, "file:///C:/src/proj/a.c"},
	}
	for _, tt := range tests {
		if got := FileURI(tt.in); got != tt.want {
			t.Errorf("FileURI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRelativeURI(t *testing.T) {
	base := filepath.Join("repo")
	if got := RelativeURI(filepath.Join("repo", "pkg", "a.go"), base); got != "pkg/a.go" {
		t.Errorf("RelativeURI = %q, want pkg/a.go", got)
	}
	if got := RelativeURI(filepath.Join("other", "a.go"), base); got != "other/a.go" {
		t.Errorf("RelativeURI outside base = %q, want other/a.go", got)
	}
	if got := RelativeURI(filepath.Join("repo", "..hidden.go"), base); got != "..hidden.go" {
		t.Errorf("RelativeURI dot-dot name = %q, want ..hidden.go", got)
	}
}
