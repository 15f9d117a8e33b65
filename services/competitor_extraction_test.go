package services

import (
	"math"
	"reflect"
	"testing"
)

func TestCandidateFromListLine(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bold marks stripped",
			body: "**Premier Choice Group** - known for reliability",
			want: "Premier Choice Group",
		},
		{
			name: "cut at colon",
			body: "Apex Solutions: the largest operator in town",
			want: "Apex Solutions",
		},
		{
			name: "cut at en dash",
			body: "Summit Partners – best value for small jobs",
			want: "Summit Partners",
		},
		{
			name: "lowercase connector kept mid name",
			body: "Bank of America branch downtown",
			want: "Bank of America",
		},
		{
			name: "stops at first lowercase non-connector",
			body: "The Corner Bakery is popular with locals",
			want: "The Corner Bakery",
		},
		{
			name: "ampersand kept",
			body: "Smith & Sons Co. offers same-day repairs",
			want: "Smith & Sons Co",
		},
		{
			name: "trailing connector dropped",
			body: "Museum of",
			want: "Museum",
		},
		{
			name: "surrounding quotes stripped",
			body: `"Harborview Co" - the waterfront option`,
			want: "Harborview Co",
		},
		{
			name: "lowercase line yields nothing",
			body: "visit their website for details",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := candidateFromListLine(tt.body); got != tt.want {
				t.Errorf("candidateFromListLine(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestExtractCompetitors(t *testing.T) {
	target := buildNameVariants("Test Business Inc")

	tests := []struct {
		name           string
		text           string
		wantNames      []string
		wantConfidence float64
	}{
		{
			name: "numbered list with recommendation phrasing",
			text: "Here are the best options:\n" +
				"1. Alpha Plumbing\n" +
				"2. Beta Drains\n" +
				"3. Test Business Inc\n",
			wantNames:      []string{"Alpha Plumbing", "Beta Drains"},
			wantConfidence: 0.85,
		},
		{
			name:           "bulleted list without structure bonus",
			text:           "- Alpha Plumbing\n- Beta Drains\n",
			wantNames:      []string{"Alpha Plumbing", "Beta Drains"},
			wantConfidence: 0.5,
		},
		{
			name:           "no list lines",
			text:           "There are several plumbers in the area.",
			wantNames:      []string{},
			wantConfidence: 0.2,
		},
		{
			name:           "duplicates deduped keeping first casing",
			text:           "1. Alpha Plumbing\n2. ALPHA PLUMBING\n",
			wantNames:      []string{"Alpha Plumbing"},
			wantConfidence: 0.7,
		},
		{
			name:           "known platforms filtered out",
			text:           "1. Google\n2. Yelp\n3. Alpha Plumbing\n",
			wantNames:      []string{"Alpha Plumbing"},
			wantConfidence: 0.7,
		},
		{
			name:           "narrative list entries rejected",
			text:           "1. Consider calling a professional\n",
			wantNames:      []string{},
			wantConfidence: 0.2,
		},
		{
			name: "oversized extraction penalized",
			text: "1. Vendor One\n2. Vendor Two\n3. Vendor Three\n4. Vendor Four\n" +
				"5. Vendor Five\n6. Vendor Six\n7. Vendor Seven\n8. Vendor Eight\n" +
				"9. Vendor Nine\n10. Vendor Ten\n11. Vendor Eleven\n12. Vendor Twelve\n",
			wantNames: []string{
				"Vendor One", "Vendor Two", "Vendor Three", "Vendor Four",
				"Vendor Five", "Vendor Six", "Vendor Seven", "Vendor Eight",
				"Vendor Nine", "Vendor Ten", "Vendor Eleven", "Vendor Twelve",
			},
			wantConfidence: 0.45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, confidence := extractCompetitors(tt.text, target)

			if !reflect.DeepEqual(names, tt.wantNames) {
				t.Errorf("extractCompetitors() names = %v, want %v", names, tt.wantNames)
			}
			if math.Abs(confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("extractCompetitors() confidence = %v, want %v", confidence, tt.wantConfidence)
			}
		})
	}
}

func TestExtractRank(t *testing.T) {
	target := buildNameVariants("Test Business Inc")

	tests := []struct {
		name string
		text string
		want *int
	}{
		{
			name: "hash ordinal on mentioning line",
			text: "Test Business Inc is ranked #2 in Austin.",
			want: intPtrForTest(2),
		},
		{
			name: "nth place phrasing",
			text: "Test Business took 3rd place in our survey.",
			want: intPtrForTest(3),
		},
		{
			name: "top n phrasing",
			text: "Test Business Inc is in the top 3 around here.",
			want: intPtrForTest(3),
		},
		{
			name: "list position used when no ordinal",
			text: "Top 5 plumbers:\n1. Alpha Plumbing\n2. Test Business Inc\n",
			want: intPtrForTest(2),
		},
		{
			name: "ordinal wins over list position",
			text: "1. Test Business Inc - ranked #4 nationally\n",
			want: intPtrForTest(4),
		},
		{
			name: "header numbers never rank an unmentioned line",
			text: "Top 5 plumbers:\n1. Alpha Plumbing\n2. Beta Drains\n",
			want: nil,
		},
		{
			name: "list position above ten ignored",
			text: "11. Test Business Inc\n",
			want: nil,
		},
		{
			name: "ordinal above ten ignored",
			text: "Test Business Inc is ranked #15 nationally.",
			want: nil,
		},
		{
			name: "no rank signal",
			text: "Test Business Inc does solid work.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractRank(tt.text, target)

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("extractRank() = %v, want %v", formatRank(got), formatRank(tt.want))
			}
			if got != nil && *got != *tt.want {
				t.Errorf("extractRank() = %d, want %d", *got, *tt.want)
			}
		})
	}
}

func intPtrForTest(v int) *int {
	return &v
}

func formatRank(r *int) interface{} {
	if r == nil {
		return nil
	}
	return *r
}

func TestExtractCitations(t *testing.T) {
	businessURL := "https://testbusiness.com"

	text := "See https://www.testbusiness.com/about?utm_source=chat&ref=1#team " +
		"and https://yelp.com/biz/test-business. " +
		"Their logo is at https://testbusiness.com/logo.png and " +
		"the storefront at https://shop.testbusiness.com/items/"

	citations := extractCitations(text, []string{"https://testbusiness.com/about?ref=1"}, businessURL)

	want := map[string]string{
		"https://testbusiness.com/about?ref=1": "primary",
		"https://yelp.com/biz/test-business":   "secondary",
		"https://shop.testbusiness.com/items":  "primary",
	}

	if len(citations) != len(want) {
		t.Fatalf("extractCitations() returned %d citations %v, want %d", len(citations), citations, len(want))
	}
	for _, citation := range citations {
		wantType, ok := want[citation.URL]
		if !ok {
			t.Errorf("extractCitations() unexpected URL %q", citation.URL)
			continue
		}
		if citation.Type != wantType {
			t.Errorf("extractCitations() %q type = %q, want %q", citation.URL, citation.Type, wantType)
		}
	}
}

func TestExtractCitationsEmpty(t *testing.T) {
	citations := extractCitations("No links here at all.", nil, "https://testbusiness.com")
	if len(citations) != 0 {
		t.Errorf("extractCitations() = %v, want none", citations)
	}
}

func TestCleanCitationURL(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name:   "host lowercased and www stripped",
			raw:    "https://www.Example.com/Path/",
			want:   "https://example.com/Path",
			wantOK: true,
		},
		{
			name:   "trailing punctuation trimmed",
			raw:    "https://example.com/page),",
			want:   "https://example.com/page",
			wantOK: true,
		},
		{
			name:   "utm parameters removed others kept",
			raw:    "http://sub.example.co.uk/page?utm_campaign=a&b=2",
			want:   "http://sub.example.co.uk/page?b=2",
			wantOK: true,
		},
		{
			name:   "fragment dropped",
			raw:    "https://example.com/docs#install",
			want:   "https://example.com/docs",
			wantOK: true,
		},
		{
			name:   "image asset rejected",
			raw:    "https://example.com/image.JPG",
			wantOK: false,
		},
		{
			name:   "non http scheme rejected",
			raw:    "ftp://example.com/file",
			wantOK: false,
		},
		{
			name:   "no scheme rejected",
			raw:    "example.com/page",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cleanCitationURL(tt.raw)

			if ok != tt.wantOK {
				t.Fatalf("cleanCitationURL(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("cleanCitationURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBaseDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"full url", "https://www.example.com/path", "example.com"},
		{"bare domain", "example.com", "example.com"},
		{"multi level tld", "https://shop.example.co.uk", "example.co.uk"},
		{"unresolvable host falls back", "https://localhost:8080", "localhost"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := baseDomain(tt.url); got != tt.want {
				t.Errorf("baseDomain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
