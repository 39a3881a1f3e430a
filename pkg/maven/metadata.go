package maven

import (
	"encoding/xml"
	"regexp"
	"strings"
	"time"
)

// Metadata is the merged repository metadata for one group:artifact.
// The version list keeps the order the repositories report it in.
type Metadata struct {
	Group       string   `json:"group" bson:"group"`
	Artifact    string   `json:"artifact" bson:"artifact"`
	Latest      string   `json:"latest,omitempty" bson:"latest,omitempty"`
	Release     string   `json:"release,omitempty" bson:"release,omitempty"`
	Versions    []string `json:"versions,omitempty" bson:"versions,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty" bson:"lastUpdated,omitempty"`
}

// LastVersion returns the final entry of the version list. The <latest>
// field reported by repositories is often stale; the tail of <versions> is
// the reliable value.
func (m *Metadata) LastVersion() string {
	if len(m.Versions) == 0 {
		return ""
	}
	return m.Versions[len(m.Versions)-1]
}

// ParseMetadata parses a maven-metadata.xml document.
func ParseMetadata(data []byte) (*Metadata, error) {
	var doc metadataXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, Wrap(ErrCodeMalformedModel, err, "metadata does not parse")
	}
	return &Metadata{
		Group:       strings.TrimSpace(doc.GroupID),
		Artifact:    strings.TrimSpace(doc.ArtifactID),
		Latest:      strings.TrimSpace(doc.Versioning.Latest),
		Release:     strings.TrimSpace(doc.Versioning.Release),
		Versions:    trimAll(doc.Versioning.Versions),
		LastUpdated: strings.TrimSpace(doc.Versioning.LastUpdated),
	}, nil
}

type metadataXML struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest      string   `xml:"latest"`
		Release     string   `xml:"release"`
		Versions    []string `xml:"versions>version"`
		LastUpdated string   `xml:"lastUpdated"`
	} `xml:"versioning"`
}

// MergeMetadata merges per-source metadata records into one. Records must be
// ordered by source priority (highest first). Per scalar field the value from
// the record with the most recent lastUpdated wins; version lists are unioned
// preserving source priority order, then original order within a source.
//
// The 14-digit Maven timestamp format makes lexicographic comparison
// chronological; an unparseable timestamp sorts oldest.
func MergeMetadata(records []*Metadata) *Metadata {
	if len(records) == 0 {
		return nil
	}
	merged := &Metadata{}
	seen := make(map[string]bool)
	var latestTS, releaseTS, updatedTS string
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if merged.Group == "" {
			merged.Group = rec.Group
		}
		if merged.Artifact == "" {
			merged.Artifact = rec.Artifact
		}
		for _, v := range rec.Versions {
			if !seen[v] {
				seen[v] = true
				merged.Versions = append(merged.Versions, v)
			}
		}
		// Per field the freshest source wins; on equal timestamps the
		// earlier (higher priority) record keeps the field.
		ts := normalizeTimestamp(rec.LastUpdated)
		if rec.Latest != "" && (merged.Latest == "" || ts > latestTS) {
			merged.Latest, latestTS = rec.Latest, ts
		}
		if rec.Release != "" && (merged.Release == "" || ts > releaseTS) {
			merged.Release, releaseTS = rec.Release, ts
		}
		if rec.LastUpdated != "" && (merged.LastUpdated == "" || ts > updatedTS) {
			merged.LastUpdated, updatedTS = rec.LastUpdated, ts
		}
	}
	return merged
}

var timestampRe = regexp.MustCompile(`^(\d{4})(\d\d)(\d\d)\.?(\d\d)(\d\d)(\d\d)$`)

// ParseTimestamp converts a Maven-style timestamp into a time.Time. Both the
// 20210702144918 form (metadata lastUpdated) and the 20210702.144917 form
// (deployed snapshot filenames) are accepted.
func ParseTimestamp(ts string) (time.Time, error) {
	if !timestampRe.MatchString(ts) {
		return time.Time{}, New(ErrCodeMalformedModel, "invalid timestamp %q", ts)
	}
	return time.Parse("20060102150405", normalizeTimestamp(ts))
}

func normalizeTimestamp(ts string) string {
	m := timestampRe.FindStringSubmatch(ts)
	if m == nil {
		return ""
	}
	return m[1] + m[2] + m[3] + m[4] + m[5] + m[6]
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
