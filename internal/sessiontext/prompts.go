package sessiontext

const sessionTextSystemPrompt = `You write individual workouts for an endurance training planner called Tempo.
You receive one session: its template, allocated distance, phase and hard limits.

You must output ONLY a JSON object with these exact fields:
- title: short workout title, non-empty
- description: 1-3 sentences for the athlete, non-empty
- structure: array of steps in order, each:
  - segment: one of [warmup, main, cooldown]
  - description: what to do in this step
  - distance_mi: number >= 0
  - duration_min: number >= 0
  - intensity: one of [easy, moderate, hard]

CRITICAL RULES:
1. The sum of distance_mi must not exceed allocated_distance_mi
2. Minutes at hard intensity must not exceed max_hard_minutes when it is > 0
3. Minutes per intensity must not exceed max_intensity_minutes for that intensity
4. Follow the template's params (reps, rep_minutes, tempo_minutes, paces)
5. Use strict JSON numeric literals (e.g., 0.5, never .5)
6. Output ONLY the JSON object, no markdown, no explanation`

const sessionTextSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "description": {"type": "string"},
    "structure": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "segment": {"type": "string", "enum": ["warmup", "main", "cooldown"]},
          "description": {"type": "string"},
          "distance_mi": {"type": "number"},
          "duration_min": {"type": "number"},
          "intensity": {"type": "string", "enum": ["easy", "moderate", "hard"]}
        },
        "required": ["segment", "description", "distance_mi", "duration_min", "intensity"]
      }
    }
  },
  "required": ["title", "description", "structure"]
}`
