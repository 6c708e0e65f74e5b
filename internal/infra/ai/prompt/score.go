package prompt

import (
	"fmt"

	"cryptoscout/internal/domain/projects"
)

// System returns the role instruction shared by every backend.
func System() string {
	return "You are an institutional crypto analyst. Be critical and realistic. " +
		"If you do not know something, say \"unknown\" instead of inventing it."
}

// Builder renders the scoring prompt for one project. The consensus engine
// treats the output as opaque text.
type Builder struct{}

// Build produces a prompt that demands a single JSON object. Backends
// violate this constantly, which is why the extractor exists.
func (Builder) Build(p projects.Project) string {
	token := p.TokenSymbol
	if token == "" {
		token = "none"
	}
	desc := p.Description
	if len(desc) > 400 {
		desc = desc[:400]
	}
	return fmt.Sprintf(`Analyze this crypto project as an investment.

PROJECT DATA
- Name: %s
- Category: %s
- TVL: $%.0f
- Token: %s
- Description: %s

RULES
- No template phrases or empty advice.
- Realistic growth by TVL: <$50k -> 1-2x, $50k-$200k -> 2-3x, $200k-$500k -> 3-5x, >$500k -> 3-5x maximum.
- One main risk, one concrete plan.
- If there is no token, say it is a service and can only be used, not bought.

ANSWER WITH ONLY ONE JSON OBJECT, no markdown, no commentary:
{
  "score": 1-10,
  "verdict": "STRONG_BUY/BUY/HOLD/AVOID/SCAM",
  "confidence": "HIGH/MEDIUM/LOW",
  "summary": "what the project is",
  "realistic_growth": "1-2x/2-3x/3-5x",
  "team_assessment": "experienced/anonymous/weak/unknown",
  "product_status": "working/beta/idea",
  "key_risks": ["one main risk"],
  "position_size": "dollar range or $0"
}`, p.Name, p.Category, p.TVL, token, desc)
}
