package extract

import (
	"testing"
	"unicode/utf8"
)

func TestParseFieldsContactDetails(t *testing.T) {
	text := `Jane Doe
jane.doe@example.com
+1 (555) 123-4567

Experience
Senior Software Engineer at Acme Corp
Built distributed systems in Go.

Education
B.Sc. Computer Science, State University

Skills
Go, Python, Kubernetes, PostgreSQL
`

	fields := ParseFields(text)

	if fields.Name != "Jane Doe" {
		t.Errorf("Expected name 'Jane Doe', got '%s'", fields.Name)
	}
	if fields.Email != "jane.doe@example.com" {
		t.Errorf("Expected email 'jane.doe@example.com', got '%s'", fields.Email)
	}
	if fields.Phone == "" {
		t.Error("Expected phone to be detected")
	}
	if fields.Experience == "" {
		t.Error("Expected experience section to be detected")
	}
	if fields.Education == "" {
		t.Error("Expected education section to be detected")
	}
	if fields.Skills != "Go, Python, Kubernetes, PostgreSQL" {
		t.Errorf("Unexpected skills section: '%s'", fields.Skills)
	}
}

func TestParseFieldsAlwaysReturnsAllKeys(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "whitespace only", text: "   \n\n  \t "},
		{name: "no recognizable content", text: "lorem ipsum dolor sit amet " +
			"consectetur adipiscing elit sed do eiusmod tempor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ParseFields(tt.text)

			// All six fields must be present (possibly empty), never panic
			_ = fields.Name
			_ = fields.Email
			_ = fields.Phone
			_ = fields.Education
			_ = fields.Skills
			_ = fields.Experience
		})
	}
}

func TestParseFieldsSectionVariants(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKey  string
		wantBody string
	}{
		{
			name:     "work experience header",
			text:     "Work Experience\nEngineer at Foo\n\nReferences\nAvailable on request",
			wantKey:  "experience",
			wantBody: "Engineer at Foo",
		},
		{
			name:     "technical skills header with colon",
			text:     "Technical Skills:\nGo, Rust\n",
			wantKey:  "skills",
			wantBody: "Go, Rust",
		},
		{
			name:     "academic background header",
			text:     "Academic Background\nPhD in Physics\n",
			wantKey:  "education",
			wantBody: "PhD in Physics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ParseFields(tt.text)

			var got string
			switch tt.wantKey {
			case "experience":
				got = fields.Experience
			case "skills":
				got = fields.Skills
			case "education":
				got = fields.Education
			}

			if got != tt.wantBody {
				t.Errorf("Expected %s '%s', got '%s'", tt.wantKey, tt.wantBody, got)
			}
		})
	}
}

func TestParseFieldsSectionStopsAtTerminator(t *testing.T) {
	text := `Skills
Go, SQL

Hobbies
Chess and hiking
`

	fields := ParseFields(text)

	if fields.Skills != "Go, SQL" {
		t.Errorf("Expected skills to stop at terminator header, got '%s'", fields.Skills)
	}
}

func TestFindPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "international format", text: "call +44 20 7946 0958 today", want: true},
		{name: "us format", text: "phone: (555) 123-4567", want: true},
		{name: "plain digits", text: "5551234567", want: true},
		{name: "short number rejected", text: "room 42-17", want: false},
		{name: "no digits", text: "no numbers here", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findPhone(tt.text)
			if (got != "") != tt.want {
				t.Errorf("findPhone(%q) = %q, want match=%v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii words", in: "john smith", want: "John Smith"},
		{name: "single word", in: "jane", want: "Jane"},
		{name: "multi-byte first rune", in: "éloise dupont", want: "Éloise Dupont"},
		{name: "single rune word", in: "ö", want: "Ö"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titleCase(tt.in)
			if got != tt.want {
				t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("titleCase(%q) produced invalid UTF-8: %q", tt.in, got)
			}
		})
	}
}

func TestFindNameFallsBackToEmail(t *testing.T) {
	// Every top line is contact info, so the name comes from the email local part
	text := "john.smith@example.com\nwww.example.com/jsmith\n"

	fields := ParseFields(text)

	if fields.Name != "John Smith" {
		t.Errorf("Expected name derived from email, got '%s'", fields.Name)
	}
}
