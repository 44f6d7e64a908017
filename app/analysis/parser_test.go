package analysis

import (
	"testing"

	"github.com/lysyi3m/alpha-scanner/app/database"
)

const sampleResponse = `**SUMMARY**
A decentralized exchange on Base with concentrated liquidity.
Launched on testnet last month.

**WHY EARLY**
- Testnet only
- Fewer than 50 stars
- Small contributor base

**CATEGORY**
DeFi

**SCORE**
7.5

**CONFIDENCE**
0.6

**RED FLAGS**
- Anonymous team
- No audit

**RECOMMENDATION**
WATCH - promising but wait for mainnet
`

func TestParseResponse(t *testing.T) {
	analysis := ParseResponse(sampleResponse)

	if analysis.Summary == "" || analysis.Summary[:15] != "A decentralized" {
		t.Errorf("Unexpected summary: '%s'", analysis.Summary)
	}
	if analysis.WhyEarly == "" {
		t.Error("Expected why_early section to be parsed")
	}
	if analysis.Category != database.CategoryDefi {
		t.Errorf("Expected category 'defi', got '%s'", analysis.Category)
	}
	if analysis.Score == nil || *analysis.Score != 7.5 {
		t.Errorf("Expected score 7.5, got %v", analysis.Score)
	}
	if analysis.Confidence == nil || *analysis.Confidence != 0.6 {
		t.Errorf("Expected confidence 0.6, got %v", analysis.Confidence)
	}
	if analysis.RedFlags == "" {
		t.Error("Expected red flags to be parsed")
	}
	if analysis.Recommendation != "WATCH: promising but wait for mainnet" {
		t.Errorf("Unexpected recommendation: '%s'", analysis.Recommendation)
	}

	if !Valid(analysis) {
		t.Error("Expected a complete response to be valid")
	}
}

func TestParseResponseNoRedFlags(t *testing.T) {
	text := `**SUMMARY**
Something.

**SCORE**
5

**RED FLAGS**
None identified
`
	analysis := ParseResponse(text)
	if analysis.RedFlags != "" {
		t.Errorf("Expected 'None identified' to suppress red flags, got '%s'", analysis.RedFlags)
	}
}

func TestParseResponseClampsScore(t *testing.T) {
	text := `**SUMMARY**
Something.

**SCORE**
15
`
	analysis := ParseResponse(text)
	if analysis.Score == nil || *analysis.Score != 10 {
		t.Errorf("Expected out-of-range score clamped to 10, got %v", analysis.Score)
	}
}

func TestParseResponseUnknownCategory(t *testing.T) {
	text := `**CATEGORY**
Memecoins
`
	analysis := ParseResponse(text)
	if analysis.Category != database.CategoryOther {
		t.Errorf("Expected unknown category mapped to 'other', got '%s'", analysis.Category)
	}
}

func TestParseResponseMissingSections(t *testing.T) {
	analysis := ParseResponse("no structure at all")

	if analysis.Summary != "" {
		t.Errorf("Expected empty summary, got '%s'", analysis.Summary)
	}
	if analysis.Score != nil {
		t.Errorf("Expected nil score, got %v", analysis.Score)
	}
	if Valid(analysis) {
		t.Error("Expected an unstructured response to be invalid")
	}
}

func TestValid(t *testing.T) {
	score := 6.0

	if Valid(database.Analysis{Summary: "text"}) {
		t.Error("Expected analysis without score to be invalid")
	}
	if Valid(database.Analysis{Score: &score}) {
		t.Error("Expected analysis without summary to be invalid")
	}
	if !Valid(database.Analysis{Summary: "text", Score: &score}) {
		t.Error("Expected analysis with summary and score to be valid")
	}
}
