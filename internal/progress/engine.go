// Package progress tracks per-student curriculum completion and
// computes deterministic next-chapter recommendations.
package progress

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/campus-ai/tutor-core/internal/curriculum"
)

// SessionStudentKey is the single session key the engine owns: the
// student id assigned to the conversation.
const SessionStudentKey = "progress_student_id"

// defaultStudentID is the sentinel used when an explicit id normalizes
// to nothing.
const defaultStudentID = "default_student"

const (
	msgProgressUpdated    = "Progress updated"
	msgNoNewChapters      = "No new chapters recorded"
	msgSnapshotRetrieved  = "Progress snapshot retrieved"
	msgNextChapterCompute = "Next chapter recommendation computed"
	msgOutlineRetrieved   = "Course outline retrieved"
)

// EventChaptersRecorded is emitted once per RecordProgress call that
// added at least one chapter.
const EventChaptersRecorded = "chapters_recorded"

// EngineConfig holds dependencies for the progress engine.
type EngineConfig struct {
	Loader *curriculum.Loader
	Store  ProgressStore // defaults to an in-memory store
	Events EventLogger   // defaults to a no-op logger
}

// Engine exposes the progress record/query operations. All query
// operations are pure functions of the catalog and the stored state;
// the only randomness is one-time student id generation.
type Engine struct {
	loader *curriculum.Loader
	store  ProgressStore
	events EventLogger
}

// NewEngine creates a progress engine.
func NewEngine(cfg EngineConfig) *Engine {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	return &Engine{
		loader: cfg.Loader,
		store:  store,
		events: events,
	}
}

// RecordRequest is the input to RecordProgress.
type RecordRequest struct {
	StudentID string   `json:"student_id"`
	Chapters  []string `json:"completed_chapters"`
	Note      string   `json:"note"`
}

// ResolveStudent returns the canonical student id for this call. An
// explicit id always wins and is persisted into the session; otherwise
// the session's assigned id is reused, and a fresh one is minted and
// stored on first contact. Repeated calls without an explicit id in
// the same session return the same id.
func (e *Engine) ResolveStudent(explicitID string, sess Session) string {
	if explicitID != "" {
		id := normalizeStudentID(explicitID)
		if sess != nil {
			sess.Set(SessionStudentKey, id)
		}
		return id
	}

	if sess != nil {
		if existing, ok := sess.Get(SessionStudentKey); ok && existing != "" {
			return existing
		}
		id := mintStudentID()
		sess.Set(SessionStudentKey, id)
		return id
	}

	return mintStudentID()
}

// RecordProgress resolves each chapter label against the catalog and
// adds the newly completed ones to the student's record. Labels that
// resolve to nothing are skipped silently.
func (e *Engine) RecordProgress(req RecordRequest, sess Session) (RecordResult, error) {
	catalog, err := e.loader.Catalog()
	if err != nil {
		return RecordResult{}, err
	}
	studentID := e.ResolveStudent(req.StudentID, sess)

	var added []string
	updated, err := e.store.Update(studentID, func(p *StudentProgress) {
		added = added[:0] // fn may be re-run; start clean each attempt
		have := make(map[string]bool, len(p.Completed))
		for _, cid := range p.Completed {
			have[cid] = true
		}
		for _, label := range req.Chapters {
			cid, ok := catalog.Resolve(label)
			if !ok || have[cid] {
				continue
			}
			p.Completed = append(p.Completed, cid)
			have[cid] = true
			added = append(added, cid)
		}
		sortByCatalog(catalog, p.Completed)
		if req.Note != "" {
			p.Notes = append(p.Notes, req.Note)
		}
	})
	if err != nil {
		return RecordResult{}, fmt.Errorf("recording progress: %w", err)
	}

	message := msgNoNewChapters
	if len(added) > 0 {
		message = msgProgressUpdated
		if err := e.events.LogEvent(Event{
			StudentID: studentID,
			EventType: EventChaptersRecorded,
			Data:      map[string]any{"added": append([]string(nil), added...)},
		}); err != nil {
			slog.Warn("failed to log progress event", "student_id", studentID, "error", err)
		}
	}

	return RecordResult{
		Status:        StatusSuccess,
		StudentID:     studentID,
		AddedChapters: summaries(catalog, added),
		Snapshot:      buildSnapshot(catalog, updated),
		Message:       message,
	}, nil
}

// GetSnapshot builds the full progress snapshot for the resolved
// student. Students without a record behave as empty, not as errors.
func (e *Engine) GetSnapshot(studentID string, sess Session) (SnapshotResult, error) {
	catalog, err := e.loader.Catalog()
	if err != nil {
		return SnapshotResult{}, err
	}
	resolved := e.ResolveStudent(studentID, sess)

	p, err := e.store.Get(resolved)
	if err != nil {
		return SnapshotResult{}, fmt.Errorf("loading progress: %w", err)
	}

	return SnapshotResult{
		Status:   StatusSuccess,
		Snapshot: buildSnapshot(catalog, p),
		Message:  msgSnapshotRetrieved,
	}, nil
}

// NextRecommendation returns only the next chapter and completed
// count, for callers that don't need the full snapshot.
func (e *Engine) NextRecommendation(studentID string, sess Session) (RecommendationResult, error) {
	catalog, err := e.loader.Catalog()
	if err != nil {
		return RecommendationResult{}, err
	}
	resolved := e.ResolveStudent(studentID, sess)

	p, err := e.store.Get(resolved)
	if err != nil {
		return RecommendationResult{}, fmt.Errorf("loading progress: %w", err)
	}

	snapshot := buildSnapshot(catalog, p)
	return RecommendationResult{
		Status:         StatusSuccess,
		StudentID:      resolved,
		NextChapter:    snapshot.NextChapter,
		CompletedCount: len(snapshot.CompletedChapters),
		Message:        msgNextChapterCompute,
	}, nil
}

// CourseOutline returns the canonical course outline.
func (e *Engine) CourseOutline() (OutlineResult, error) {
	catalog, err := e.loader.Catalog()
	if err != nil {
		return OutlineResult{}, err
	}
	return OutlineResult{
		Status:  StatusSuccess,
		Outline: catalog.Outline(),
		Message: msgOutlineRetrieved,
	}, nil
}

// Students returns every student id with a recorded progress entry.
func (e *Engine) Students() ([]string, error) {
	return e.store.Students()
}

func buildSnapshot(catalog *curriculum.Catalog, p StudentProgress) Snapshot {
	completed := append([]string(nil), p.Completed...)
	sortByCatalog(catalog, completed)

	have := make(map[string]bool, len(completed))
	for _, cid := range completed {
		have[cid] = true
	}

	var next *curriculum.Summary
	for _, cid := range catalog.Order() {
		if !have[cid] {
			if s, ok := catalog.Summary(cid); ok {
				next = &s
			}
			break
		}
	}

	total := catalog.Len()
	pct := 0.0
	if total > 0 {
		pct = round1(float64(len(completed)) / float64(total) * 100)
	}

	return Snapshot{
		StudentID:         p.StudentID,
		CompletedChapters: summaries(catalog, completed),
		NextChapter:       next,
		TotalChapters:     total,
		ProgressPct:       pct,
	}
}

// sortByCatalog orders chapter ids by their catalog rank, never by the
// order they were recorded in. Unknown ids sink to the end.
func sortByCatalog(catalog *curriculum.Catalog, ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ri, iok := catalog.Rank(ids[i])
		rj, jok := catalog.Rank(ids[j])
		if iok != jok {
			return iok
		}
		return ri < rj
	})
}

func summaries(catalog *curriculum.Catalog, ids []string) []curriculum.Summary {
	out := make([]curriculum.Summary, 0, len(ids))
	for _, cid := range ids {
		if s, ok := catalog.Summary(cid); ok {
			out = append(out, s)
		}
	}
	return out
}

func normalizeStudentID(id string) string {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if normalized == "" {
		return defaultStudentID
	}
	return normalized
}

// mintStudentID generates a practically collision-free student id from
// a full 128-bit random token.
func mintStudentID() string {
	u := uuid.New()
	return "student_" + hex.EncodeToString(u[:])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
