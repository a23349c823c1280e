package progress

import "github.com/campus-ai/tutor-core/internal/curriculum"

// Status values carried by every engine result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Snapshot is the computed, catalog-ordered view of one student's
// progress. It is derived on demand and never stored.
type Snapshot struct {
	StudentID         string               `json:"student_id"`
	CompletedChapters []curriculum.Summary `json:"completed_chapters"`
	NextChapter       *curriculum.Summary  `json:"next_chapter"`
	TotalChapters     int                  `json:"total_chapters"`
	ProgressPct       float64              `json:"progress_pct"`
}

// RecordResult is returned by RecordProgress.
type RecordResult struct {
	Status        string               `json:"status"`
	StudentID     string               `json:"student_id"`
	AddedChapters []curriculum.Summary `json:"added_chapters"`
	Snapshot      Snapshot             `json:"snapshot"`
	Message       string               `json:"message"`
}

// SnapshotResult is returned by GetSnapshot.
type SnapshotResult struct {
	Status string `json:"status"`
	Snapshot
	Message string `json:"message"`
}

// RecommendationResult is the lighter payload returned by
// NextRecommendation for callers that don't need the full snapshot.
type RecommendationResult struct {
	Status         string              `json:"status"`
	StudentID      string              `json:"student_id"`
	NextChapter    *curriculum.Summary `json:"next_chapter"`
	CompletedCount int                 `json:"completed_count"`
	Message        string              `json:"message"`
}

// OutlineResult is returned by CourseOutline.
type OutlineResult struct {
	Status string `json:"status"`
	curriculum.Outline
	Message string `json:"message"`
}
