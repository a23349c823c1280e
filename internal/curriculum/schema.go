package curriculum

// unitSchema is the JSON Schema every curriculum document must satisfy
// before a catalog is built from it. Uniqueness of ids and orders is
// checked separately in buildCatalog, where the error can name the
// offending chapters.
const unitSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["chapters"],
  "properties": {
    "unit_id": {"type": "string"},
    "unit_name": {"type": "string"},
    "description": {"type": "string"},
    "learning_outcomes_overall": {
      "type": "array",
      "items": {"type": "string"}
    },
    "chapters": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["chapter_id", "order"],
        "properties": {
          "chapter_id": {"type": "string", "minLength": 1},
          "order": {"type": "integer"},
          "title": {"type": "string"},
          "week_label": {"type": "string"},
          "learning_outcomes": {
            "type": "array",
            "items": {"type": "string"}
          },
          "prerequisites": {
            "type": "array",
            "items": {"type": "string"}
          }
        }
      }
    }
  }
}`
