package classify

import "strings"

// rubric is the fixed scoring instruction sent ahead of every website text.
const rubric = `You are a fitness-industry marketing specialist.
Analyze the text below, taken from a gym's website, and judge how promising the gym is
as a sales prospect for an AI personal-trainer app.

## Ranking criteria

### Rank S (hot, approach immediately)
Any of:
- Open 24 hours AND unmanned or self-service operation
- Active hiring ("staff wanted", job postings)
- Small to mid-size independent gym (not a major chain)

### Rank A (promising)
Any of:
- Personal-training gym operating multiple locations
- Booking only by phone or LINE (a sign of lagging digitalization)
- No proprietary app or booking system mentioned

### Rank B (consider)
- Ordinary gym with nothing notable
- Too little information to judge

### Rank C (exclude)
- Major chain (Anytime Fitness, RIZAP, Konami Sports, etc.)
- Public or municipally operated facility
- Already runs an advanced app or member system

## Output format (strict)
Reply with this JSON object only, no other text.
Write "reason" and "features" in the language of the website text.

` + "```json" + `
{
  "rank": "S",
  "reason": "24-hour unmanned operation and currently hiring staff. Independent, easy to reach the decision maker.",
  "features": ["24 hours", "unmanned", "hiring"],
  "phone": "06-XXXX-XXXX"
}
` + "```" + `

## Website text
`

// BuildPrompt concatenates the rubric with the website text.
func BuildPrompt(text string) string {
	return rubric + "\n" + strings.TrimSpace(text)
}
