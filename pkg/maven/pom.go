package maven

import (
	"encoding/xml"
	"strings"
)

// ParseDescriptor parses raw project-descriptor XML into a [Descriptor].
// Namespace prefixes are handled by encoding/xml; element order inside
// <dependencies>, <dependencyManagement>, and <profiles> is preserved.
// A document that does not parse, or that lacks an artifactId, fails with
// ErrCodeMalformedModel.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var proj pomProject
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, Wrap(ErrCodeMalformedModel, err, "descriptor does not parse")
	}
	if strings.TrimSpace(proj.ArtifactID) == "" {
		return nil, New(ErrCodeMalformedModel, "descriptor has no artifactId")
	}
	return proj.descriptor(), nil
}

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Packaging    string          `xml:"packaging"`
	Name         string          `xml:"name"`
	Description  string          `xml:"description"`
	URL          string          `xml:"url"`
	Parent       *pomParent      `xml:"parent"`
	Properties   pomProperties   `xml:"properties"`
	DepMgmt      pomDepMgmt      `xml:"dependencyManagement"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Profiles     []pomProfile    `xml:"profiles>profile"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDepMgmt struct {
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string         `xml:"groupId"`
	ArtifactID string         `xml:"artifactId"`
	Version    string         `xml:"version"`
	Classifier string         `xml:"classifier"`
	Type       string         `xml:"type"`
	Scope      string         `xml:"scope"`
	Optional   string         `xml:"optional"`
	Exclusions []pomExclusion `xml:"exclusions>exclusion"`
}

type pomExclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

type pomProfile struct {
	ID           string          `xml:"id"`
	Activation   *pomActivation  `xml:"activation"`
	Properties   pomProperties   `xml:"properties"`
	DepMgmt      pomDepMgmt      `xml:"dependencyManagement"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomActivation struct {
	ActiveByDefault string             `xml:"activeByDefault"`
	JDK             string             `xml:"jdk"`
	OS              *pomActivationOS   `xml:"os"`
	Property        *pomActivationProp `xml:"property"`
}

type pomActivationOS struct {
	Family string `xml:"family"`
	Name   string `xml:"name"`
	Arch   string `xml:"arch"`
}

type pomActivationProp struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

// pomProperties collects arbitrary child elements into an ordered-insensitive
// string map. Property values keep their raw text, expressions included.
type pomProperties struct {
	entries map[string]string
}

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.entries = make(map[string]string)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			p.entries[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

func (proj *pomProject) descriptor() *Descriptor {
	desc := &Descriptor{
		Group:       strings.TrimSpace(proj.GroupID),
		Artifact:    strings.TrimSpace(proj.ArtifactID),
		Version:     strings.TrimSpace(proj.Version),
		Packaging:   strings.TrimSpace(proj.Packaging),
		Name:        strings.TrimSpace(proj.Name),
		Description: strings.TrimSpace(proj.Description),
		URL:         strings.TrimSpace(proj.URL),
		Properties:  proj.Properties.entries,
	}
	if desc.Packaging == "" {
		desc.Packaging = DefaultType
	}
	if desc.Properties == nil {
		desc.Properties = map[string]string{}
	}
	if proj.Parent != nil {
		desc.Parent = &Coordinate{
			Group:    strings.TrimSpace(proj.Parent.GroupID),
			Artifact: strings.TrimSpace(proj.Parent.ArtifactID),
			Version:  strings.TrimSpace(proj.Parent.Version),
			Type:     "pom",
		}
	}
	desc.DependencyManagement = convertDeps(proj.DepMgmt.Dependencies, "")
	desc.Dependencies = convertDeps(proj.Dependencies, "")
	for _, prof := range proj.Profiles {
		desc.Profiles = append(desc.Profiles, Profile{
			ID:                   strings.TrimSpace(prof.ID),
			Activation:           prof.Activation.activation(),
			Properties:           orEmpty(prof.Properties.entries),
			Dependencies:         convertDeps(prof.Dependencies, prof.ID),
			DependencyManagement: convertDeps(prof.DepMgmt.Dependencies, prof.ID),
		})
	}
	return desc
}

func convertDeps(in []pomDependency, profile string) []Dependency {
	if len(in) == 0 {
		return nil
	}
	out := make([]Dependency, 0, len(in))
	for _, d := range in {
		dep := Dependency{
			Group:       strings.TrimSpace(d.GroupID),
			Artifact:    strings.TrimSpace(d.ArtifactID),
			Version:     strings.TrimSpace(d.Version),
			Classifier:  strings.TrimSpace(d.Classifier),
			Type:        strings.TrimSpace(d.Type),
			Scope:       strings.TrimSpace(d.Scope),
			Optional:    strings.TrimSpace(d.Optional) == "true",
			OptionalSet: strings.TrimSpace(d.Optional) != "",
			Profile:     profile,
		}
		for _, ex := range d.Exclusions {
			dep.Exclusions = append(dep.Exclusions, Exclusion{
				Group:    strings.TrimSpace(ex.GroupID),
				Artifact: strings.TrimSpace(ex.ArtifactID),
			})
		}
		out = append(out, dep)
	}
	return out
}

func (a *pomActivation) activation() Activation {
	if a == nil {
		return Activation{Kind: ActivationNone}
	}
	switch {
	case a.OS != nil:
		return Activation{
			Kind:     ActivationOS,
			OSFamily: strings.TrimSpace(a.OS.Family),
			OSName:   strings.TrimSpace(a.OS.Name),
			OSArch:   strings.TrimSpace(a.OS.Arch),
		}
	case a.JDK != "":
		return Activation{Kind: ActivationJDK, JDK: strings.TrimSpace(a.JDK)}
	case a.Property != nil:
		return Activation{
			Kind:          ActivationProperty,
			Property:      strings.TrimSpace(a.Property.Name),
			PropertyValue: strings.TrimSpace(a.Property.Value),
		}
	case strings.TrimSpace(a.ActiveByDefault) == "true":
		return Activation{Kind: ActivationAlways}
	default:
		return Activation{Kind: ActivationNone}
	}
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
