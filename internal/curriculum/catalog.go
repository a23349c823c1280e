package curriculum

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// ConfigError reports a missing, malformed, or inconsistent curriculum
// document. It is fatal to initialization; no partial catalog is ever
// published alongside one.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("curriculum config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Catalog is the immutable, ordered view of a curriculum unit: the
// canonical chapter sequence, a chapter lookup, and the alias index
// used to resolve free-text chapter references.
type Catalog struct {
	unit    Unit
	ordered []string           // canonical ids, ascending by Chapter.Order
	byID    map[string]Chapter // canonical id -> chapter
	rank    map[string]int     // canonical id -> position in ordered
	aliases map[string]string  // normalized label -> canonical id
}

// normalize trims a label and case-folds it so lookups are
// case-insensitive for the full Unicode range.
func normalize(label string) string {
	return cases.Fold().String(strings.TrimSpace(label))
}

func buildCatalog(unit Unit) (*Catalog, error) {
	chapters := make([]Chapter, len(unit.Chapters))
	copy(chapters, unit.Chapters)
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Order < chapters[j].Order
	})
	unit.Chapters = chapters

	c := &Catalog{
		unit:    unit,
		byID:    make(map[string]Chapter, len(chapters)),
		rank:    make(map[string]int, len(chapters)),
		aliases: make(map[string]string, len(chapters)*4),
	}

	seenOrder := make(map[int]string, len(chapters))
	for _, ch := range chapters {
		cid := normalize(ch.ID)
		if cid == "" {
			return nil, fmt.Errorf("chapter with order %d has a blank chapter_id", ch.Order)
		}
		if prev, ok := c.byID[cid]; ok {
			return nil, fmt.Errorf("duplicate chapter_id %q (chapters %q and %q)", cid, prev.ID, ch.ID)
		}
		if prev, ok := seenOrder[ch.Order]; ok {
			return nil, fmt.Errorf("duplicate order %d (chapters %q and %q)", ch.Order, prev, ch.ID)
		}
		seenOrder[ch.Order] = ch.ID

		c.rank[cid] = len(c.ordered)
		c.ordered = append(c.ordered, cid)
		c.byID[cid] = ch

		aliases := []string{cid, normalize(ch.Title), normalize(ch.WeekLabel)}
		if ch.Order != 0 {
			aliases = append(aliases, fmt.Sprintf("chapter %d", ch.Order))
		}
		for _, alias := range aliases {
			if alias == "" {
				continue
			}
			if owner, ok := c.aliases[alias]; ok && owner != cid {
				return nil, fmt.Errorf("alias %q is ambiguous between chapters %q and %q", alias, owner, cid)
			}
			c.aliases[alias] = cid
		}
	}

	return c, nil
}

// Resolve maps a free-text chapter label to its canonical id. It
// matches the exact canonical id first, then the alias index. A label
// that matches nothing returns ok=false, never an error.
func (c *Catalog) Resolve(label string) (string, bool) {
	key := normalize(label)
	if key == "" {
		return "", false
	}
	if _, ok := c.byID[key]; ok {
		return key, true
	}
	if cid, ok := c.aliases[key]; ok {
		return cid, true
	}
	return "", false
}

// Order returns the canonical chapter sequence, ascending by order.
func (c *Catalog) Order() []string {
	out := make([]string, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Rank returns a chapter's position in the canonical sequence.
func (c *Catalog) Rank(canonicalID string) (int, bool) {
	r, ok := c.rank[canonicalID]
	return r, ok
}

// Len returns the total number of chapters.
func (c *Catalog) Len() int { return len(c.ordered) }

// Summary projects the public fields of a chapter. Unknown ids return
// ok=false.
func (c *Catalog) Summary(canonicalID string) (Summary, bool) {
	ch, ok := c.byID[canonicalID]
	if !ok {
		return Summary{}, false
	}
	return Summary{
		ChapterID:        ch.ID,
		Title:            ch.Title,
		Order:            ch.Order,
		WeekLabel:        ch.WeekLabel,
		LearningOutcomes: append([]string(nil), ch.LearningOutcomes...),
	}, true
}

// Outline returns the unit metadata plus every chapter in canonical
// order, including prerequisites.
func (c *Catalog) Outline() Outline {
	out := Outline{
		UnitID:                  c.unit.UnitID,
		UnitName:                c.unit.UnitName,
		Description:             c.unit.Description,
		LearningOutcomesOverall: append([]string(nil), c.unit.LearningOutcomesOverall...),
		Chapters:                make([]OutlineChapter, 0, len(c.ordered)),
	}
	for _, cid := range c.ordered {
		summary, _ := c.Summary(cid)
		ch := c.byID[cid]
		out.Chapters = append(out.Chapters, OutlineChapter{
			Summary:       summary,
			Prerequisites: append([]string(nil), ch.Prerequisites...),
		})
	}
	return out
}
