package openai

import (
	"fmt"
	"strings"
)

func buildSystemPrompt(knownCategories []string) string {
	categories := strings.Join(knownCategories, ", ")
	if categories == "" {
		categories = "(none yet)"
	}

	return fmt.Sprintf(`You are a meticulous research librarian and file-organisation expert.

Read the document text, pick its category, suggest a descriptive filename, and summarise it.

Respond with ONLY a valid JSON object. No markdown, no explanation, no extra text.
The object must have exactly 3 keys:
{
  "category": "...",
  "filename": "...",
  "summary": "..."
}

Rules:
- "category": pick the BEST match from the known categories: [%s].
  Only if nothing fits, invent ONE new short category name.
- "filename": a descriptive stem in lowercase snake_case, no extension.
  Start with the year when you can detect it (e.g. 2026_).
- "summary": one to three sentences.`, categories)
}

func buildUserPrompt(text, originalName string) string {
	return fmt.Sprintf("Original filename: %s\n\n--- DOCUMENT TEXT ---\n%s\n--- END ---", originalName, text)
}
