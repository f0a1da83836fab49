package report

import (
	"strings"

	"golang.org/x/text/cases"
)

// Rule maps affiliation substrings to one canonical institution name.
// Keywords are matched case-insensitively; any keyword qualifies.
type Rule struct {
	Institution string
	Keywords    []string
}

// RuleSet is an ordered list of institution rules plus the fixed roster
// shown in the summary table. Rules are tried in order, so specific
// institutions must precede general ones (JPL and Ames before the NASA
// catch-all). An overflow institution collects matches that are tracked
// but kept out of the roster table.
type RuleSet struct {
	Name     string
	Rules    []Rule
	Roster   []string
	Overflow string
}

// Categorize returns the institution the affiliation belongs to.
func (rs RuleSet) Categorize(affiliation string) (string, bool) {
	folded := cases.Fold().String(affiliation)
	for _, rule := range rs.Rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(folded, keyword) {
				return rule.Institution, true
			}
		}
	}
	return "", false
}

// IsOverflow reports whether the institution is tracked outside the roster.
func (rs RuleSet) IsOverflow(institution string) bool {
	return rs.Overflow != "" && institution == rs.Overflow
}

const otherNASA = "Other NASA"

// GovernmentRules tracks government-funded research centers. The roster is
// fixed: institutions with no citations still appear with zero counts.
func GovernmentRules() RuleSet {
	rules := []Rule{
		{Institution: "NASA Jet Propulsion Lab", Keywords: []string{"jpl", "jet propulsion lab"}},
		{Institution: "NASA Ames Research Center", Keywords: []string{"ames"}},
		{Institution: otherNASA, Keywords: []string{"nasa"}},
		{Institution: "European Space Agency (ESA), Europe", Keywords: []string{"european space agency", "esa"}},
		{Institution: "German Aerospace Center (DLR), Germany", Keywords: []string{"german aerospace center", "dlr"}},
		{Institution: "MIT Lincoln Lab", Keywords: []string{"mit lincoln lab"}},
		{Institution: "National Robotics Engineering Center", Keywords: []string{"national robotics engineering center"}},
		{Institution: "INRIA, France", Keywords: []string{"inria"}},
		{Institution: "Korea Advanced Institute of Science and Technology (KAIST), South Korea", Keywords: []string{"kaist", "korea advanced institute of science and technology"}},
		{Institution: "Technology Innovation Institute (TII), UAE", Keywords: []string{"technology innovation institute", "tii"}},
		{Institution: "CNR-IEIIT, Italy", Keywords: []string{"cnr-ieiit", "cnr ieiit"}},
		{Institution: "UK Atomic Energy Authority, UK", Keywords: []string{"uk atomic energy authority", "atomic energy authority"}},
	}
	return RuleSet{
		Name:     "government",
		Rules:    rules,
		Roster:   rosterFrom(rules, otherNASA),
		Overflow: otherNASA,
	}
}

// IndustryRules tracks industry research centers.
func IndustryRules() RuleSet {
	rules := []Rule{
		{Institution: "Toyota Research Institute", Keywords: []string{"toyota research institute"}},
		{Institution: "Google Deepmind or Google", Keywords: []string{"deepmind", "google"}},
		{Institution: "Amazon Prime Air", Keywords: []string{"amazon prime air", "prime air"}},
		{Institution: "NVIDIA", Keywords: []string{"nvidia"}},
		{Institution: "OpenAI", Keywords: []string{"openai", "open ai"}},
		{Institution: "SpaceX", Keywords: []string{"spacex", "space x"}},
		{Institution: "Tesla", Keywords: []string{"tesla"}},
		{Institution: "Plus AI", Keywords: []string{"plus ai", "plus.ai", "plusai"}},
		{Institution: "Bosch", Keywords: []string{"bosch"}},
		{Institution: "Honda Research Institute", Keywords: []string{"honda research institute", "honda"}},
		{Institution: "Tyvak", Keywords: []string{"tyvak"}},
		{Institution: "Argotec, Italy", Keywords: []string{"argotec"}},
		{Institution: "Tencent, China", Keywords: []string{"tencent"}},
	}
	return RuleSet{
		Name:   "industry",
		Rules:  rules,
		Roster: rosterFrom(rules, ""),
	}
}

// RuleSetByName resolves the built-in rule sets.
func RuleSetByName(name string) (RuleSet, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "government":
		return GovernmentRules(), true
	case "industry":
		return IndustryRules(), true
	default:
		return RuleSet{}, false
	}
}

func rosterFrom(rules []Rule, exclude string) []string {
	roster := make([]string, 0, len(rules))
	for _, rule := range rules {
		if exclude != "" && rule.Institution == exclude {
			continue
		}
		roster = append(roster, rule.Institution)
	}
	return roster
}
