package extractor

import (
	"regexp"
	"strings"
)

// TitleStrategy derives fields from the <title> element, falling back to the
// first <h1> for the job title.
type TitleStrategy struct{}

func (TitleStrategy) Name() string { return "title" }

func (TitleStrategy) Extract(doc *Document, field Field) string {
	parts := splitTitle(doc.Doc.Find("title").First().Text())
	switch field {
	case FieldTitle:
		if parts.role != "" {
			return parts.role
		}
		return CollapseWhitespace(doc.Doc.Find("h1").First().Text())
	case FieldCompany:
		return parts.company
	case FieldLocation:
		return parts.location
	}
	return ""
}

type titleParts struct {
	role     string
	company  string
	location string
}

var (
	titleSeparators = []string{" | ", " - ", " \u2013 ", " \u2014 ", " · ", " :: "}

	// "Acme hiring Backend Engineer in Berlin, Germany | LinkedIn"
	hiringPattern = regexp.MustCompile(`^(.+?) hiring (.+?)(?: in (.+?))?$`)

	careersAtPattern = regexp.MustCompile(`(?i)^(?:careers|jobs)\s+(?:at|@)\s+(.+)$`)
	// "Work at Acme", but not "Work at Home Support Specialist".
	workAtPattern = regexp.MustCompile(`(?i)^(?:working|work)\s+(?:at|@)\s+(.+)$`)
	careersSuffix    = regexp.MustCompile(`(?i)^(.+?)\s+(?:careers|jobs|career site|job board)$`)

	applicationPrefix = regexp.MustCompile(`(?i)^(?:job application for|apply for|apply to|job:)\s+`)

	roleWords = regexp.MustCompile(`(?i)\b(engineer|developer|manager|designer|analyst|scientist|architect|lead|director|specialist|consultant|administrator|intern|internship|coordinator|assistant|associate|officer|technician|representative|recruiter|head of|vp|writer|editor|accountant|nurse|teacher|sales|marketing|support|operations|product|devops|sre|qa)\b`)
)

// splitTitle breaks a page title such as "Backend Developer at Acme - Careers"
// or "Senior Engineer | Acme Corp" into role and company.
func splitTitle(raw string) titleParts {
	s := CollapseWhitespace(raw)
	if s == "" {
		return titleParts{}
	}

	var p titleParts

	segments := splitSegments(s)
	var kept []string
	for _, seg := range segments {
		if m := careersAtPattern.FindStringSubmatch(seg); m != nil {
			if p.company == "" {
				p.company = strings.TrimSpace(m[1])
			}
			continue
		}
		if m := workAtPattern.FindStringSubmatch(seg); m != nil && !roleWords.MatchString(m[1]) {
			if p.company == "" {
				p.company = strings.TrimSpace(m[1])
			}
			continue
		}
		if m := careersSuffix.FindStringSubmatch(seg); m != nil && !roleWords.MatchString(seg) {
			if p.company == "" {
				p.company = strings.TrimSpace(m[1])
			}
			continue
		}
		if isGenericTitle(seg) || isBoardName(seg) {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return p
	}

	first := applicationPrefix.ReplaceAllString(kept[0], "")

	if m := hiringPattern.FindStringSubmatch(first); m != nil {
		return titleParts{role: m[2], company: m[1], location: m[3]}
	}

	if i := strings.LastIndex(first, " at "); i > 0 && !roleOnlyAfter(first[:i], first[i+len(" at "):]) {
		p.role = strings.TrimSpace(first[:i])
		if p.company == "" {
			p.company = strings.TrimSpace(first[i+len(" at "):])
		}
		return p
	}

	p.role = first
	if len(kept) > 1 {
		second := kept[1]
		// "Acme - Senior Engineer": the role is on the right.
		if roleWords.MatchString(second) && !roleWords.MatchString(first) {
			p.role = second
			second = first
		}
		if p.company == "" {
			p.company = second
		}
	}
	return p
}

func splitSegments(s string) []string {
	segments := []string{s}
	for _, sep := range titleSeparators {
		var next []string
		for _, seg := range segments {
			for _, part := range strings.Split(seg, sep) {
				if part = strings.TrimSpace(part); part != "" {
					next = append(next, part)
				}
			}
		}
		segments = next
	}
	return segments
}

// roleOnlyAfter reports whether the text after " at " reads as the role while
// the text before does not, as in "Work at Home Support Specialist".
func roleOnlyAfter(before, after string) bool {
	return roleWords.MatchString(after) && !roleWords.MatchString(before)
}
