package extractor

import (
	"strings"
)

// JSONLDStrategy reads schema.org JobPosting objects embedded as
// application/ld+json. It is the most reliable source when present.
type JSONLDStrategy struct{}

func (JSONLDStrategy) Name() string { return "jsonld" }

func (JSONLDStrategy) Extract(doc *Document, field Field) string {
	for _, p := range doc.JobPostings() {
		var v string
		switch field {
		case FieldTitle:
			v = firstString(p["title"], p["name"])
		case FieldCompany:
			v = organizationName(p["hiringOrganization"])
		case FieldLocation:
			v = postingLocation(p)
		case FieldDescription:
			v = stringValue(p["description"])
		}
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []any:
		for _, item := range s {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				return str
			}
		}
	case map[string]any:
		return firstString(s["@value"], s["name"])
	}
	return ""
}

func firstString(values ...any) string {
	for _, v := range values {
		if s := stringValue(v); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// organizationName handles hiringOrganization given as a string, an
// Organization object, or an array of either.
func organizationName(v any) string {
	switch org := v.(type) {
	case string:
		return org
	case map[string]any:
		return firstString(org["name"], org["legalName"])
	case []any:
		for _, item := range org {
			if name := organizationName(item); strings.TrimSpace(name) != "" {
				return name
			}
		}
	}
	return ""
}

func postingLocation(p map[string]any) string {
	var parts []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		parts = append(parts, s)
	}

	switch loc := p["jobLocation"].(type) {
	case []any:
		for _, item := range loc {
			add(placeName(item))
		}
	default:
		add(placeName(loc))
	}

	if isTelecommute(p["jobLocationType"]) {
		if len(parts) == 0 {
			return "Remote"
		}
		add("Remote")
	}
	if len(parts) == 0 {
		add(requirementsName(p["applicantLocationRequirements"]))
	}
	return strings.Join(parts, "; ")
}

// placeName formats a Place as "Locality, Region, Country".
func placeName(v any) string {
	switch place := v.(type) {
	case string:
		return place
	case map[string]any:
		addr := place["address"]
		switch a := addr.(type) {
		case string:
			return a
		case map[string]any:
			return joinNonEmpty(", ",
				stringValue(a["addressLocality"]),
				stringValue(a["addressRegion"]),
				countryName(a["addressCountry"]),
			)
		case []any:
			for _, item := range a {
				if s := placeName(map[string]any{"address": item}); s != "" {
					return s
				}
			}
		}
		return stringValue(place["name"])
	}
	return ""
}

func countryName(v any) string {
	if m, ok := v.(map[string]any); ok {
		return firstString(m["name"], m["identifier"])
	}
	return stringValue(v)
}

func requirementsName(v any) string {
	switch r := v.(type) {
	case map[string]any:
		if name := stringValue(r["name"]); name != "" {
			return "Remote (" + name + ")"
		}
	case []any:
		var names []string
		for _, item := range r {
			if m, ok := item.(map[string]any); ok {
				if name := stringValue(m["name"]); name != "" {
					names = append(names, name)
				}
			}
		}
		if len(names) > 0 {
			return "Remote (" + strings.Join(names, ", ") + ")"
		}
	}
	return ""
}

func isTelecommute(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "TELECOMMUTE")
	case []any:
		for _, item := range t {
			if isTelecommute(item) {
				return true
			}
		}
	}
	return false
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
