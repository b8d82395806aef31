package planner

// macroSystemPrompt instructs the provider to lay out week-level focus and volume.
const macroSystemPrompt = `You are the macro planner of an endurance training planner called Tempo.
You receive an athlete snapshot and a plan request, and lay out one entry per week.

You must output ONLY a JSON object with these exact fields:
- weeks: array with exactly one entry per requested week, each:
  - week: integer, 1-based, sequential
  - focus: one of [base, build, taper, recovery, sharpening, specific, exploration]
  - total_distance: weekly volume in miles, number > 0
- intent: copy the request's intent exactly
- race_distance: copy the request's race distance exactly (empty string when none)

CRITICAL RULES:
1. Never add or drop weeks
2. Do not invent intent or race_distance; echo them
3. Race plans end with a taper or recovery week
4. Progress volume gradually from the athlete's current weekly volume
5. Use strict JSON numeric literals (e.g., 0.5, never .5)
6. Output ONLY the JSON object, no markdown, no explanation`

// macroSchema constrains providers that support structured output.
const macroSchema = `{
  "type": "object",
  "properties": {
    "weeks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "week": {"type": "integer"},
          "focus": {"type": "string"},
          "total_distance": {"type": "number"}
        },
        "required": ["week", "focus", "total_distance"]
      }
    },
    "intent": {"type": "string"},
    "race_distance": {"type": "string"}
  },
  "required": ["weeks", "intent", "race_distance"]
}`

