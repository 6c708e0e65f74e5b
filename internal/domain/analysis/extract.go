package analysis

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Field aliases, in lookup priority order, matched against folded keys.
var (
	scoreAliases   = []string{"score", "scorenumeric", "finalscore", "overall", "rating"}
	verdictAliases = []string{"verdict", "decision", "recommendation", "ratingtext"}
)

var (
	// "key": value fragments: quoted or bare key, then a quoted string,
	// number, boolean, null, or a bare word (models love `verdict: BUY`).
	kvRe = regexp.MustCompile(`(?m)"?([A-Za-z][A-Za-z0-9 _-]*?)"?\s*:\s*("(?:[^"\\]|\\.)*"|-?[0-9]+(?:\.[0-9]+)?|true|false|null|[A-Za-z_][A-Za-z0-9_-]*)`)

	// A bare score in [1,10], at most one decimal place.
	bareNumRe = regexp.MustCompile(`\b(10(?:\.0)?|[1-9](?:\.[0-9])?)\b`)

	// One of the five verdict tokens as a whole word, spacing-tolerant.
	bareVerdictRe = regexp.MustCompile(`(?i)\b(strong[ _-]?buy|buy|hold|avoid|scam)\b`)

	wsRunRe         = regexp.MustCompile(`[ \t\r\n]+`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Extract turns raw backend text into a NormalizedAnalysis. It never fails:
// strategies are tried in order and the one that succeeded is recorded in
// Source. Worst case is a scoreless record tagged SourceNone, which the
// aggregator then drops.
func Extract(raw string) NormalizedAnalysis {
	text := strings.TrimSpace(raw)
	if text == "" {
		return NormalizedAnalysis{Source: SourceNone}
	}

	if obj := parseExact(stripFence(text)); obj != nil {
		return fromObject(obj, SourceJSON)
	}
	if obj := braceScan(text); obj != nil {
		return fromObject(obj, SourceBraceScan)
	}
	if obj := scanKeyValues(text); obj != nil {
		return fromObject(obj, SourceKeyValue)
	}
	return extractBare(text)
}

// stripFence removes a markdown code fence wrapping the whole text
// (```json\n{...}\n``` or ```\n{...}\n```). Models wrap JSON in fences even
// when told not to.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	s := text
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseExact accepts only a text that is exactly one brace-delimited object.
func parseExact(text string) map[string]any {
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil
	}
	return obj
}

// braceScan parses the substring between the first '{' and the last '}'.
// If that fails it applies a light repair pass (collapse whitespace runs,
// drop a trailing comma before a closer) and retries once.
func braceScan(text string) map[string]any {
	i := strings.IndexByte(text, '{')
	j := strings.LastIndexByte(text, '}')
	if i < 0 || j <= i {
		return nil
	}
	candidate := text[i : j+1]

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return obj
	}

	repaired := wsRunRe.ReplaceAllString(candidate, " ")
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")
	if err := json.Unmarshal([]byte(repaired), &obj); err == nil {
		return obj
	}
	return nil
}

// scanKeyValues assembles "key: value" fragments into an object. Returns nil
// unless at least one score-like or verdict-like field was recovered, so the
// caller can fall through to the bare-token pass.
func scanKeyValues(text string) map[string]any {
	matches := kvRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	obj := make(map[string]any, len(matches))
	for _, m := range matches {
		key, rawVal := m[1], m[2]
		if _, dup := obj[key]; dup {
			continue
		}
		obj[key] = decodeFragment(rawVal)
	}

	useful := false
	for k := range obj {
		folded := FoldKey(k)
		for _, a := range append(append([]string{}, scoreAliases...), verdictAliases...) {
			if folded == a {
				useful = true
			}
		}
	}
	if !useful {
		return nil
	}
	return obj
}

func decodeFragment(raw string) any {
	switch {
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return s
		}
		return strings.Trim(raw, `"`)
	case raw == "true":
		return true
	case raw == "false":
		return false
	case raw == "null":
		return nil
	default:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		return raw
	}
}

// extractBare is the last resort: an independent search for a score number
// and a verdict token anywhere in the text.
func extractBare(text string) NormalizedAnalysis {
	var score *float64
	if m := bareNumRe.FindString(text); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			v := ClampScore(f)
			score = &v
		}
	}
	var verdict Verdict
	if m := bareVerdictRe.FindString(text); m != "" {
		verdict, _ = ParseVerdict(m)
	}

	switch {
	case score != nil:
		if verdict == "" {
			verdict = VerdictFromScore(*score)
		}
		return NormalizedAnalysis{Score: score, Verdict: verdict, Source: SourceBareNumber}
	case verdict != "":
		v := ScoreFromVerdict(verdict)
		return NormalizedAnalysis{Score: &v, Verdict: verdict, Source: SourceBareVerdict}
	default:
		return NormalizedAnalysis{Source: SourceNone}
	}
}

// fromObject maps a decoded object onto the canonical schema. Keys are
// folded before lookup; a verdict string outside the canonical set maps to
// HOLD rather than failing the record — an unparseable field must not throw
// away an otherwise usable score.
func fromObject(obj map[string]any, src ExtractionSource) NormalizedAnalysis {
	folded := foldObject(obj)
	out := NormalizedAnalysis{Source: src}

	for _, alias := range scoreAliases {
		v, ok := folded[alias]
		if !ok {
			continue
		}
		f, err := ToFloat(v)
		if err != nil {
			continue
		}
		clamped := ClampScore(f)
		out.Score = &clamped
		break
	}

	for _, alias := range verdictAliases {
		v, ok := folded[alias]
		if !ok {
			continue
		}
		s := toString(v)
		if s == "" {
			continue
		}
		if parsed, ok := ParseVerdict(s); ok {
			out.Verdict = parsed
		} else {
			out.Verdict = VerdictHold
		}
		break
	}

	if v, ok := folded["confidence"]; ok {
		out.Confidence = ParseConfidence(toString(v))
	}
	out.Summary = firstString(folded, "summary", "projectsummary", "description")
	out.GrowthPotential = firstString(folded, "realisticgrowth", "growthpotential")
	out.TeamAssessment = firstString(folded, "teamassessment", "team")
	out.ProductStatus = firstString(folded, "productstatus")
	out.PositionSize = firstString(folded, "positionsize", "capitalallocation")
	if v, ok := folded["keystrengths"]; ok {
		out.KeyStrengths = toStringList(v)
	}
	if v, ok := folded["keyrisks"]; ok {
		out.KeyRisks = toStringList(v)
	} else if v, ok := folded["mainrisk"]; ok {
		out.KeyRisks = toStringList(v)
	}

	// Reconcile: one of score/verdict can stand in for the other.
	if out.Verdict == "" && out.Score != nil {
		out.Verdict = VerdictFromScore(*out.Score)
	}
	if out.Score == nil && out.Verdict != "" {
		v := ScoreFromVerdict(out.Verdict)
		out.Score = &v
	}
	return out
}

// foldObject rebuilds the object with folded keys. Keys are visited in
// sorted order so collisions resolve deterministically (first wins).
func foldObject(obj map[string]any) map[string]any {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]any, len(obj))
	for _, k := range keys {
		fk := FoldKey(k)
		if _, dup := folded[fk]; dup {
			continue
		}
		folded[fk] = obj[k]
	}
	return folded
}

func firstString(folded map[string]any, aliases ...string) string {
	for _, a := range aliases {
		if v, ok := folded[a]; ok {
			if s := toString(v); s != "" {
				return s
			}
		}
	}
	return ""
}
