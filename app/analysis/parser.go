package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lysyi3m/alpha-scanner/app/database"
)

var (
	summaryRe        = regexp.MustCompile(`(?is)\*\*SUMMARY\*\*\s*\n(.*?)(?:\n\*\*|\z)`)
	whyEarlyRe       = regexp.MustCompile(`(?is)\*\*WHY EARLY\*\*\s*\n(.*?)(?:\n\*\*|\z)`)
	categoryRe       = regexp.MustCompile(`(?i)\*\*CATEGORY\*\*\s*\n\s*(\w+)`)
	scoreRe          = regexp.MustCompile(`(?i)\*\*SCORE\*\*\s*\n\s*(\d+(?:\.\d+)?)`)
	confidenceRe     = regexp.MustCompile(`(?i)\*\*CONFIDENCE\*\*\s*\n\s*(0?\.\d+|1\.0?|1)`)
	redFlagsRe       = regexp.MustCompile(`(?is)\*\*RED FLAGS\*\*\s*\n(.*?)(?:\n\*\*|\z)`)
	recommendationRe = regexp.MustCompile(`(?i)\*\*RECOMMENDATION\*\*\s*\n\s*(WATCH|RESEARCH|SKIP)[:\s-]*(.*)`)
)

var responseCategories = map[string]string{
	"l1":             database.CategoryL1,
	"layer1":         database.CategoryL1,
	"l2":             database.CategoryL2,
	"layer2":         database.CategoryL2,
	"defi":           database.CategoryDefi,
	"infrastructure": database.CategoryInfrastructure,
	"infra":          database.CategoryInfrastructure,
	"tooling":        database.CategoryTooling,
	"tools":          database.CategoryTooling,
	"gaming":         database.CategoryGaming,
	"game":           database.CategoryGaming,
	"nft":            database.CategoryNFT,
	"social":         database.CategorySocial,
	"ai":             database.CategoryAI,
	"other":          database.CategoryOther,
}

// ParseResponse extracts the structured sections from an analysis response
// produced against BuildPrompt's format. Missing sections stay zero-valued;
// out-of-range numbers are clamped.
func ParseResponse(text string) database.Analysis {
	var analysis database.Analysis

	if m := summaryRe.FindStringSubmatch(text); m != nil {
		analysis.Summary = strings.TrimSpace(m[1])
	}

	if m := whyEarlyRe.FindStringSubmatch(text); m != nil {
		analysis.WhyEarly = strings.TrimSpace(m[1])
	}

	if m := categoryRe.FindStringSubmatch(text); m != nil {
		if category, ok := responseCategories[strings.ToLower(m[1])]; ok {
			analysis.Category = category
		} else {
			analysis.Category = database.CategoryOther
		}
	}

	if m := scoreRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			v = clamp(v, 0, 10)
			analysis.Score = &v
		}
	}

	if m := confidenceRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			v = clamp(v, 0, 1)
			analysis.Confidence = &v
		}
	}

	if m := redFlagsRe.FindStringSubmatch(text); m != nil {
		flags := strings.TrimSpace(m[1])
		if !strings.Contains(strings.ToLower(flags), "none") {
			analysis.RedFlags = flags
		}
	}

	if m := recommendationRe.FindStringSubmatch(text); m != nil {
		recommendation := strings.ToUpper(m[1])
		if reason := strings.TrimSpace(m[2]); reason != "" {
			recommendation += ": " + reason
		}
		analysis.Recommendation = recommendation
	}

	return analysis
}

// Valid reports whether a parsed analysis carries the minimum payload worth
// saving: a summary and a score.
func Valid(analysis database.Analysis) bool {
	return analysis.Summary != "" && analysis.Score != nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
