package answers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Kind tags a stored answer with the control type it was produced for. The
// same question can have different answers per control kind.
type Kind string

const (
	KindRadio    Kind = "radio"
	KindDropdown Kind = "dropdown"
	KindTextbox  Kind = "textbox"
	KindNumeric  Kind = "numeric"
	KindDate     Kind = "date"
	KindCheckbox Kind = "checkbox"
)

// Record is one persisted question/answer pair.
type Record struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Sanitize normalizes question text into the cache key form: lowercased,
// trimmed, quotes, backslashes and brackets removed, control characters
// stripped, newlines collapsed to spaces and trailing commas dropped.
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	s := strings.ToLower(text)
	s = strings.NewReplacer(`"`, "", `\`, "", "[", "", "]", "", "\r", "", "\n", " ").Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ", ")
}

// Store is the persistent answer cache backed by a single JSON array file.
// The run loop is sequential, so the store assumes a single writer and
// rewrites the whole file on every append.
type Store struct {
	path    string
	logger  *zap.Logger
	records []Record
	index   map[string]string
}

// NewStore loads the cache from path. A missing or corrupt file yields an
// empty store; corruption is logged, not fatal.
func NewStore(path string, logger *zap.Logger) *Store {
	s := &Store{
		path:   path,
		logger: logger,
		index:  make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("reading answers file, starting empty", zap.String("path", path), zap.Error(err))
		}
		return s
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("answers file is corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return s
	}

	s.records = records
	for _, r := range records {
		s.index[cacheKey(Kind(r.Type), r.Question)] = r.Answer
	}

	logger.Debug("loaded answers cache", zap.String("path", path), zap.Int("count", len(records)))
	return s
}

// Lookup returns the cached answer for the sanitized question and kind.
func (s *Store) Lookup(kind Kind, question string) (string, bool) {
	answer, ok := s.index[cacheKey(kind, Sanitize(question))]
	return answer, ok
}

// Save appends the record and rewrites the backing file.
func (s *Store) Save(kind Kind, question, answer string) error {
	record := Record{
		Type:     string(kind),
		Question: Sanitize(question),
		Answer:   answer,
	}

	s.records = append(s.records, record)
	s.index[cacheKey(kind, record.Question)] = answer

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating answers directory: %w", err)
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling answers: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing answers file: %w", err)
	}

	return nil
}

// Len returns the number of cached records.
func (s *Store) Len() int { return len(s.records) }

func cacheKey(kind Kind, sanitizedQuestion string) string {
	return string(kind) + "\x00" + sanitizedQuestion
}
