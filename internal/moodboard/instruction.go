package moodboard

import "fmt"

const instructionTemplate = `
You are a senior art director and AI prompt engineer.

Create a cohesive aesthetic moodboard based on:

Theme keywords: %s
Primary use case: %s
Style preset: %s
Intensity: %s

Respond in EXACTLY this structure and keep it short but rich:

[PALETTE]
- 4 to 6 colors as hex codes with 1-2 word labels. Example:
#0f172a - deep navy
#eab308 - gold

[KEYWORDS]
- 8 to 12 short vibe words, comma-separated.

[DESCRIPTION]
- 1 short paragraph describing the moodboard like a Pinterest board.

[PROMPTS]
- 3 to 4 image prompts (numbered list), each 1–2 lines, ready for generative image tools like Midjourney or DALL·E.
`

// BuildInstruction embeds the request fields verbatim into the fixed template.
func BuildInstruction(req Request) string {
	return fmt.Sprintf(instructionTemplate, req.Theme, req.UseCase, req.Style, req.Intensity)
}
