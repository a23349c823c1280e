package curriculum

// Chapter is one ordered unit of the curriculum document.
type Chapter struct {
	ID               string   `json:"chapter_id" yaml:"chapter_id"`
	Title            string   `json:"title" yaml:"title"`
	Order            int      `json:"order" yaml:"order"`
	WeekLabel        string   `json:"week_label" yaml:"week_label"`
	LearningOutcomes []string `json:"learning_outcomes" yaml:"learning_outcomes"`
	Prerequisites    []string `json:"prerequisites" yaml:"prerequisites"`
}

// Unit is the root of the curriculum document.
type Unit struct {
	UnitID                  string    `json:"unit_id" yaml:"unit_id"`
	UnitName                string    `json:"unit_name" yaml:"unit_name"`
	Description             string    `json:"description" yaml:"description"`
	LearningOutcomesOverall []string  `json:"learning_outcomes_overall" yaml:"learning_outcomes_overall"`
	Chapters                []Chapter `json:"chapters" yaml:"chapters"`
}

// Summary is the public projection of a chapter returned to callers.
type Summary struct {
	ChapterID        string   `json:"chapter_id"`
	Title            string   `json:"title"`
	Order            int      `json:"order"`
	WeekLabel        string   `json:"week_label"`
	LearningOutcomes []string `json:"learning_outcomes"`
}

// OutlineChapter is a chapter as it appears in the course outline,
// including its informational prerequisites.
type OutlineChapter struct {
	Summary
	Prerequisites []string `json:"prerequisites"`
}

// Outline is the full course view used to ground tutoring responses.
type Outline struct {
	UnitID                  string           `json:"unit_id"`
	UnitName                string           `json:"unit_name"`
	Description             string           `json:"description"`
	LearningOutcomesOverall []string         `json:"learning_outcomes_overall"`
	Chapters                []OutlineChapter `json:"chapters"`
}
