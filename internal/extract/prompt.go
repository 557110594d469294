package extract

import "fmt"

const promptTemplate = `
Analyze the following recipe description and extract the ingredients, preparation steps, any additional notes, and a suggested title.

Your response MUST be a single, valid JSON object.
The JSON object MUST conform to the following structure:
{
  "ingredients": [
    { "id": "string", "name": "string", "quantity": "string (original)", "quantityMetric": "string (e.g., 240ml, 120g, or empty if not applicable/convertible)" }
  ],
  "steps": [
    "string"
  ],
  "extractedNotes": "string",
  "suggestedTitle": "string (Concise and appealing recipe title based on the content)"
}

Details for extraction:
- For each ingredient:
    - Provide an "id" (a unique string you generate).
    - Provide "name" and "quantity" as extracted.
    - If "quantity" contains units like ounces (oz), pounds (lb), cups, tablespoons (tbsp), teaspoons (tsp), convert them to metric equivalents (grams for solids/powders, milliliters for liquids) and place this in "quantityMetric". Examples: '1 cup flour' -> quantityMetric '120g'; '8 oz chicken' -> quantityMetric '227g'; '1 tbsp oil' -> quantityMetric '15ml'.
    - If conversion is not applicable (e.g., '2 carrots', '1 pinch of salt', 'to taste') or impossible, "quantityMetric" should be an empty string.
- "ingredients" must be an array of objects. If no ingredients are found, it must be an empty array.
- "steps" must be an array of strings. If no steps are found, it must be an empty array.
- "extractedNotes" must be a single string. If no specific notes are found, this can be an empty string.
- "suggestedTitle" should be a catchy, relevant title for the recipe. If no suitable title can be derived, provide a generic one like "Extracted Recipe".
- If the input text does not appear to be a recipe: "ingredients" and "steps" must be empty arrays, "extractedNotes" should explain this and "suggestedTitle" can be "Not a Recipe".

Recipe Description:
---
%s
---

CRITICAL INSTRUCTIONS:
1. Your entire response MUST be a single, valid JSON object and nothing else.
2. The JSON object MUST strictly adhere to the structure shown above.
3. DO NOT include ANY text, comments, markdown, code fences or explanations outside of the JSON object itself.
4. The response MUST begin with '{' and MUST end with '}'.
5. Ensure all strings within the JSON are properly escaped if they contain special characters.
`

// BuildPrompt returns the instruction sent to the model for description.
func BuildPrompt(description string) string {
	return fmt.Sprintf(promptTemplate, description)
}
