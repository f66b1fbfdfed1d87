package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumelens/internal/types"
)

// Resume text is messy OCR output, so all field detection is best effort.
// Every field stays present in the result, empty when nothing matched.

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\(?\d{1,4}\)?[\s.\-]?\(?\d{1,4}\)?[\s.\-]?\d{2,4}[\s.\-]?\d{2,4}(?:[\s.\-]?\d{2,4})?`)
	urlPattern   = regexp.MustCompile(`(?i)(https?://|www\.|linkedin\.com|github\.com)`)
	digitPattern = regexp.MustCompile(`\d`)
)

// sectionHeaders maps canonical section keys to the header spellings seen in
// real resumes. Any known header terminates the previous section.
var sectionHeaders = map[string]*regexp.Regexp{
	"education":  regexp.MustCompile(`(?i)^\s*(education|academic background|academics|qualifications)\s*:?\s*$`),
	"skills":     regexp.MustCompile(`(?i)^\s*(skills|technical skills|core competencies|technologies)\s*:?\s*$`),
	"experience": regexp.MustCompile(`(?i)^\s*(experience|work experience|professional experience|employment|employment history|work history)\s*:?\s*$`),
}

// terminatorHeaders end a captured section without starting one of the six
// tracked fields.
var terminatorHeaders = regexp.MustCompile(`(?i)^\s*(summary|objective|profile|projects|certifications?|awards?|publications|languages|interests|hobbies|references|contact|activities)\s*:?\s*$`)

// ParseFields runs the field heuristics over extracted resume text. The
// returned struct always carries all six fields, empty when not detected.
func ParseFields(text string) types.ResumeFields {
	fields := types.ResumeFields{}
	if strings.TrimSpace(text) == "" {
		return fields
	}

	lines := strings.Split(text, "\n")

	fields.Email = emailPattern.FindString(text)
	fields.Phone = findPhone(text)
	fields.Name = findName(lines, fields.Email)

	sections := findSections(lines)
	fields.Education = sections["education"]
	fields.Skills = sections["skills"]
	fields.Experience = sections["experience"]

	return fields
}

// findPhone returns the first match that actually looks like a phone number
// rather than a date range or zip code.
func findPhone(text string) string {
	for _, candidate := range phonePattern.FindAllString(text, 10) {
		digits := len(digitPattern.FindAllString(candidate, -1))
		if digits >= 7 && digits <= 15 {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

// findName takes the first plausible line near the top of the document:
// short, mostly letters, not contact info or a section header.
func findName(lines []string, email string) string {
	limit := min(len(lines), 10)
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if emailPattern.MatchString(line) || urlPattern.MatchString(line) {
			continue
		}
		if digitPattern.MatchString(line) {
			continue
		}
		if isSectionHeader(line) || terminatorHeaders.MatchString(line) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 1 || len(words) > 5 {
			continue
		}
		return line
	}

	// Last resort: derive a name from the email local part
	if email != "" {
		local := strings.SplitN(email, "@", 2)[0]
		local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
		local = strings.TrimSpace(local)
		if local != "" && !digitPattern.MatchString(local) {
			return titleCase(local)
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// findSections walks the lines once, collecting body text under each known
// section header until the next header.
func findSections(lines []string) map[string]string {
	sections := make(map[string]string, len(sectionHeaders))
	var current string
	var body []string

	flush := func() {
		if current == "" {
			return
		}
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" && sections[current] == "" {
			sections[current] = content
		}
		current = ""
		body = nil
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if key := matchSectionHeader(line); key != "" {
			flush()
			current = key
			continue
		}
		if terminatorHeaders.MatchString(line) {
			flush()
			continue
		}
		if current != "" && line != "" {
			body = append(body, line)
		}
	}
	flush()

	return sections
}

func matchSectionHeader(line string) string {
	for key, pattern := range sectionHeaders {
		if pattern.MatchString(line) {
			return key
		}
	}
	return ""
}

func isSectionHeader(line string) bool {
	return matchSectionHeader(line) != ""
}
