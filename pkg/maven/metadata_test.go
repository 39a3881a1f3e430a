package maven

import (
	"reflect"
	"testing"
)

const sampleMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>org.example</groupId>
  <artifactId>widget</artifactId>
  <versioning>
    <latest>2.0.0</latest>
    <release>1.9.0</release>
    <versions>
      <version>1.8.0</version>
      <version>1.9.0</version>
      <version>2.0.0</version>
    </versions>
    <lastUpdated>20240301120000</lastUpdated>
  </versioning>
</metadata>`

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata([]byte(sampleMetadata))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if md.Group != "org.example" || md.Artifact != "widget" {
		t.Errorf("identity = %s:%s", md.Group, md.Artifact)
	}
	if md.Latest != "2.0.0" || md.Release != "1.9.0" {
		t.Errorf("latest/release = %s/%s", md.Latest, md.Release)
	}
	if got := md.LastVersion(); got != "2.0.0" {
		t.Errorf("LastVersion = %q", got)
	}
	if md.LastUpdated != "20240301120000" {
		t.Errorf("LastUpdated = %q", md.LastUpdated)
	}
}

func TestParseMetadataMalformed(t *testing.T) {
	if _, err := ParseMetadata([]byte("not xml at all <")); !Is(err, ErrCodeMalformedModel) {
		t.Errorf("err = %v, want MALFORMED_MODEL", err)
	}
}

func TestLastVersionEmpty(t *testing.T) {
	md := &Metadata{}
	if got := md.LastVersion(); got != "" {
		t.Errorf("LastVersion on empty = %q", got)
	}
}

func TestMergeMetadata(t *testing.T) {
	local := &Metadata{
		Group: "g", Artifact: "a",
		Latest:      "1.5",
		Versions:    []string{"1.0", "1.5"},
		LastUpdated: "20230101000000",
	}
	central := &Metadata{
		Group: "g", Artifact: "a",
		Latest:      "2.0",
		Release:     "2.0",
		Versions:    []string{"1.0", "2.0"},
		LastUpdated: "20240101000000",
	}

	merged := MergeMetadata([]*Metadata{local, central})

	// Versions are unioned in priority order, dedup'd.
	wantVersions := []string{"1.0", "1.5", "2.0"}
	if !reflect.DeepEqual(merged.Versions, wantVersions) {
		t.Errorf("Versions = %v, want %v", merged.Versions, wantVersions)
	}
	// The fresher record wins scalar fields.
	if merged.Latest != "2.0" {
		t.Errorf("Latest = %q, want 2.0 (fresher source)", merged.Latest)
	}
	if merged.Release != "2.0" {
		t.Errorf("Release = %q, want 2.0", merged.Release)
	}
	if merged.LastUpdated != "20240101000000" {
		t.Errorf("LastUpdated = %q", merged.LastUpdated)
	}
}

func TestMergeMetadataTieFavorsPriority(t *testing.T) {
	first := &Metadata{Latest: "1.0", LastUpdated: "20240101000000"}
	second := &Metadata{Latest: "9.9", LastUpdated: "20240101000000"}

	merged := MergeMetadata([]*Metadata{first, second})
	if merged.Latest != "1.0" {
		t.Errorf("Latest = %q, want the higher-priority source on a timestamp tie", merged.Latest)
	}
}

func TestMergeMetadataMissingTimestamp(t *testing.T) {
	stamped := &Metadata{Latest: "2.0", LastUpdated: "20240101000000"}
	unstamped := &Metadata{Latest: "3.0"}

	merged := MergeMetadata([]*Metadata{unstamped, stamped})
	if merged.Latest != "2.0" {
		t.Errorf("Latest = %q, want 2.0 (stamped beats unstamped)", merged.Latest)
	}
}

func TestMergeMetadataEmpty(t *testing.T) {
	if got := MergeMetadata(nil); got != nil {
		t.Errorf("MergeMetadata(nil) = %v, want nil", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"20210702144918", false},
		{"20210702.144917", false},
		{"2021", true},
		{"not-a-timestamp", true},
	}
	for _, tt := range tests {
		ts, err := ParseTimestamp(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) = %v, want error", tt.input, ts)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", tt.input, err)
			continue
		}
		if ts.Year() != 2021 || ts.Month() != 7 || ts.Day() != 2 {
			t.Errorf("ParseTimestamp(%q) = %v", tt.input, ts)
		}
	}
}

func TestTimestampFormsCompareEqual(t *testing.T) {
	a, err := ParseTimestamp("20210702.144917")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseTimestamp("20210702144917")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("dotted and plain forms differ: %v vs %v", a, b)
	}
}
