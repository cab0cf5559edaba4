package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ParamPlaceholder labels a route segment that is a single parameter.
const ParamPlaceholder = "{}"

// ParseTemplate splits an OpenAPI path template into segments.
// "/files/{name}.{ext}" yields one literal segment and one segment with
// two parameter parts around a "." literal. Empty segments are kept, so
// "/sessions/" ends in an empty segment and renders back unchanged.
func ParseTemplate(path string) ([]Segment, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path %q must start with '/'", path)
	}
	if path == "/" {
		return nil, nil
	}
	raw := strings.Split(path[1:], "/")
	segments := make([]Segment, 0, len(raw))
	for _, r := range raw {
		seg, err := parseSegment(r)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(s string) (Segment, error) {
	var seg Segment
	var lit strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return Segment{}, fmt.Errorf("unmatched '{' in segment %q", s)
			}
			name := s[i+1 : i+1+end]
			if name == "" {
				return Segment{}, errors.New("empty parameter name")
			}
			if strings.ContainsAny(name, "{/") {
				return Segment{}, fmt.Errorf("unmatched '{' in segment %q", s)
			}
			if lit.Len() > 0 {
				seg.Parts = append(seg.Parts, SegmentPart{Literal: lit.String()})
				lit.Reset()
			}
			seg.Parts = append(seg.Parts, SegmentPart{Param: name})
			i += end + 1
		case '}':
			return Segment{}, fmt.Errorf("unmatched '}' in segment %q", s)
		default:
			lit.WriteByte(s[i])
		}
	}
	if lit.Len() > 0 {
		seg.Parts = append(seg.Parts, SegmentPart{Literal: lit.String()})
	}
	return seg, nil
}

// RouteLabel is the route-tree key of a segment: literal text, or the text
// with every parameter replaced by the placeholder.
func (s Segment) RouteLabel() string {
	return s.Render(func(string) string { return ParamPlaceholder })
}

// patternEscaper keeps literal colons apart from parameter markers.
var patternEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`)

// RoutePattern renders segments in ":name" form, e.g. "/sessions/:sessionId".
// Literal ':' and '\' are backslash-escaped, so "/a/:b" and "/a/{b}" differ.
func RoutePattern(segments []Segment) string {
	if len(segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		for _, p := range s.Parts {
			if p.IsParam() {
				b.WriteString(":" + p.Param)
			} else {
				b.WriteString(patternEscaper.Replace(p.Literal))
			}
		}
	}
	return b.String()
}
