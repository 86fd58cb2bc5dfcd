package transcript

import "regexp"

// Pattern is one tagged extraction rule. Extractors iterate a Registry
// instead of branching on individual expressions.
type Pattern struct {
	Category string
	Re       *regexp.Regexp
}

type Registry struct {
	patterns []Pattern
}

func newRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) add(category, expr string) *Registry {
	r.patterns = append(r.patterns, Pattern{Category: category, Re: regexp.MustCompile(expr)})
	return r
}

// Patterns returns the registered rules in insertion order.
func (r *Registry) Patterns() []Pattern {
	return r.patterns
}

func (r *Registry) ByCategory(category string) []Pattern {
	var out []Pattern
	for _, p := range r.patterns {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// confidence phrases are matched against lowercased text.
var confidenceRegistry = newRegistry().
	add("positive", `strong\s+momentum`).
	add("positive", `ahead\s+of\s+schedule`).
	add("positive", `exceed(?:ing|ed)?\s+expectations`).
	add("positive", `confident\s+in\s+our\s+ability`).
	add("positive", `on\s+track\s+to`).
	add("positive", `well[\s-]positioned`).
	add("positive", `significant\s+progress`).
	add("positive", `pleased\s+with`).
	add("positive", `outperform(?:ing|ed)?`).
	add("positive", `accelerat(?:ing|ed)\s+growth`).
	add("positive", `strong\s+pipeline`).
	add("positive", `robust\s+demand`).
	add("positive", `positive\s+momentum`).
	add("positive", `breakthrough`).
	add("positive", `milestone\s+achievement`).
	add("negative", `challenging\s+environment`).
	add("negative", `below\s+expectations`).
	add("negative", `uncertain(?:ty)?`).
	add("negative", `delay(?:ed|s)?`).
	add("negative", `setback`).
	add("negative", `concerns?\s+about`).
	add("negative", `difficult\s+quarter`).
	add("negative", `headwinds?`).
	add("negative", `disappointing`).
	add("negative", `slower\s+than\s+expected`).
	add("negative", `competitive\s+pressure`).
	add("negative", `supply\s+chain\s+issues`).
	add("negative", `regulatory\s+challenges`).
	add("negative", `clinical\s+trial\s+failure`).
	add("negative", `discontinued?\s+(?:study|program)`).
	add("neutral", `in\s+line\s+with`).
	add("neutral", `as\s+expected`).
	add("neutral", `maintain(?:ing|ed)?`).
	add("neutral", `continues?\s+to`).
	add("neutral", `steady`).
	add("neutral", `consistent\s+with`).
	add("neutral", `on\s+plan`).
	add("neutral", `unchanged`)

// qaMarkerRegistry is scanned in order; the first marker that matches splits the call.
var qaMarkerRegistry = newRegistry().
	add("qa", `(?i)question[\s-]and[\s-]answer`).
	add("qa", `(?i)q\s*&\s*a\s+session`).
	add("qa", `(?i)we'?ll\s+now\s+(?:take|open|begin)\s+questions?`).
	add("qa", `(?i)now\s+open\s+(?:the\s+)?(?:floor|line)?\s*(?:for|to)\s+questions?`).
	add("qa", `(?i)turn\s+(?:it\s+)?over\s+(?:to|for)\s+questions?`).
	add("qa", `(?i)operator\s+instructions`)

var productRegistry = newRegistry().
	add("drug_code", `\b([A-Z]{2,4}-?\d{3,4}[A-Z]?)\b`).
	add("our_product", `(?i)\bour\s+([A-Z][\w-]+)\s+(?:product|drug|therapy|treatment|candidate|program)`).
	add("phase_trial", `(?i)phase\s+(?:I{1,3}|[1-3][ab]?)\s+(?:trial|study|data|results)\s+(?:of|for)\s+([A-Z][\w-]+)`).
	add("quoted_brand", `(?i)["']([A-Z][\w-]+)["']?\s+(?:product|drug|therapy)`)

var guidanceRegistry = newRegistry().
	add("numeric_outlook", `(?i)(?:expect|anticipate|project|forecast|guide).*?(?:\$[\d,]+\s*(?:million|billion))`).
	add("guidance_outlook", `(?i)(?:revenue|earnings)\s+(?:guidance|outlook).*?(?:\d+%|\$[\d,]+)`).
	add("annual_outlook", `(?i)(?:full[\s-]year|annual|FY\s*\d{4}).*?(?:expect|anticipate).*?(?:\d+%|\$[\d,]+)`).
	add("reaffirmed", `(?i)reaffirm(?:ing|ed)?\s+(?:our\s+)?(?:\d{4}\s+)?guidance`).
	add("raised", `(?i)rais(?:ing|ed)\s+(?:our\s+)?(?:\d{4}\s+)?guidance`).
	add("lowered", `(?i)lower(?:ing|ed)?\s+(?:our\s+)?(?:\d{4}\s+)?guidance`)

var metricRegistry = newRegistry().
	add("revenue", `(?i)revenue.*?(?:\$[\d,]+\s*(?:million|billion)|[\d.]+%)`).
	add("clinical", `(?i)(?:phase\s+(?:I{1,3}|[1-3][ab]?)|clinical\s+trial|study).*?(?:complet|enroll|result|data|success|fail)`).
	add("percentage", `(?i)(?:increase|decrease|growth|decline|up|down).*?([\d.]+)%`).
	add("dollar", `(?i)\$[\d,]+(?:\.\d+)?\s*(?:million|billion|thousand)?`)

var quoteRegistry = newRegistry().
	add("forward_looking", `(?is)we (?:expect|anticipate|believe|are confident|project).*?[.!]`).
	add("guidance", `(?is)our guidance.*?[.!]`).
	add("revenue", `(?is)revenue.*?(?:increased|decreased|grew|declined).*?[.!]`).
	add("clinical", `(?is)clinical trial.*?(?:results|data|outcomes).*?[.!]`).
	add("regulatory", `(?is)fda.*?(?:approval|clearance|submission).*?[.!]`).
	add("pipeline", `(?is)pipeline.*?(?:advancing|progress|development).*?[.!]`)
