package master

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"PeteSystem/api/constants"
	"PeteSystem/internal/config"
	"PeteSystem/internal/sheetstore"
)

// Master sheet column layout (one header row). The sheet interleaves unrelated
// vocabulary columns, so each one is addressed individually.
var vocabularyColumns = map[string]int{
	"person":     0,
	"mode":       1,
	"group_head": 2,
	"vendor":     5,
	"reason":     6,
	"department": 8,
}

const masterRowWidth = 9

// MasterCache holds the deduplicated dropdown vocabularies read from the
// Master sheet. Reads are served from memory; Refresh replaces the snapshot.
type MasterCache struct {
	store *sheetstore.Client

	mu        sync.RWMutex
	vocab     map[string][]string
	fetchedAt time.Time
}

func NewMasterCache(store *sheetstore.Client) *MasterCache {
	return &MasterCache{store: store, vocab: make(map[string][]string)}
}

// Refresh refetches the Master sheet and rebuilds every vocabulary. Values are
// trimmed, blanks dropped and duplicates removed case-insensitively keeping
// first occurrence order.
func (c *MasterCache) Refresh(ctx context.Context) error {
	rows, err := c.store.Fetch(ctx, config.MasterSheet)
	if err != nil {
		return err
	}
	if len(rows) > config.MasterHeaderRows {
		rows = rows[config.MasterHeaderRows:]
	} else {
		rows = nil
	}

	vocab := make(map[string][]string, len(vocabularyColumns))
	for name, col := range vocabularyColumns {
		seen := make(map[string]bool)
		var values []string
		for _, row := range rows {
			v := strings.TrimSpace(row.Cell(col))
			if v == "" || seen[strings.ToLower(v)] {
				continue
			}
			seen[strings.ToLower(v)] = true
			values = append(values, v)
		}
		vocab[name] = values
	}

	c.mu.Lock()
	c.vocab = vocab
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// Vocabulary returns the cached values for one vocabulary name.
func (c *MasterCache) Vocabulary(name string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	values, ok := c.vocab[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(values))
	copy(out, values)
	return out, true
}

// All returns every cached vocabulary keyed by name.
func (c *MasterCache) All() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.vocab))
	for name, values := range c.vocab {
		vs := make([]string, len(values))
		copy(vs, values)
		out[name] = vs
	}
	return out
}

// FetchedAt reports when the snapshot was last rebuilt.
func (c *MasterCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// addMu serializes option writes so two concurrent additions to the same
// column cannot both target the same empty cell.
var addMu sync.Mutex

// AddOption appends a new value at the bottom of one vocabulary column. The
// written row carries empty strings everywhere else so sibling columns stay
// untouched. Duplicate values (case-insensitive) are rejected.
func (c *MasterCache) AddOption(ctx context.Context, vocabulary, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New(constants.ErrOptionEmpty)
	}
	col, ok := vocabularyColumns[vocabulary]
	if !ok {
		return errors.New(constants.ErrUnknownVocabulary)
	}

	addMu.Lock()
	defer addMu.Unlock()

	rows, err := c.store.Fetch(ctx, config.MasterSheet)
	if err != nil {
		return err
	}

	// Last non-empty cell in this column decides where the new value lands.
	target := config.MasterHeaderRows + 1
	for i := config.MasterHeaderRows; i < len(rows); i++ {
		cell := strings.TrimSpace(rows[i].Cell(col))
		if cell == "" {
			continue
		}
		if strings.EqualFold(cell, value) {
			return errors.New(constants.FormatFieldError(value, "already exists"))
		}
		target = i + 2 // next absolute 1-based row after this one
	}

	row := make(sheetstore.Row, masterRowWidth)
	row[col] = value
	if err := c.store.Update(ctx, config.MasterSheet, target, row); err != nil {
		return err
	}
	return c.Refresh(ctx)
}
