package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mdcal/internal/model"

	"gopkg.in/yaml.v3"
)

// FileStore keeps one markdown file per document in a flat folder:
// <id>.md with YAML frontmatter carrying everything but the body. The
// folder is the user-visible "documents folder" preference, so the files
// stay greppable and editable outside the app.
//
// All operations hold one mutex; a per-document Update is therefore a
// single read-modify-write unit.
type FileStore struct {
	dir string

	mu sync.Mutex
}

func OpenFiles(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) ensure() error {
	return os.MkdirAll(s.dir, 0o755)
}

// frontmatter is the on-disk metadata block. The legacy single "date"
// field maps to startDate = endDate on load.
type frontmatter struct {
	Title      string       `yaml:"title"`
	StartDate  int64        `yaml:"startDate"`
	EndDate    int64        `yaml:"endDate"`
	Status     model.Status `yaml:"status"`
	CreatedAt  int64        `yaml:"createdAt"`
	UpdatedAt  int64        `yaml:"updatedAt"`
	LegacyDate int64        `yaml:"date,omitempty"`
}

const frontmatterFence = "---"

func encodeDocumentFile(doc model.Document) ([]byte, error) {
	meta := frontmatter{
		Title:     doc.Title,
		StartDate: doc.StartDate,
		EndDate:   doc.EndDate,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(frontmatterFence + "\n")
	buf.Write(raw)
	buf.WriteString(frontmatterFence + "\n")
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}

func decodeDocumentFile(id string, b []byte) (model.Document, error) {
	text := string(b)
	rest, ok := strings.CutPrefix(text, frontmatterFence+"\n")
	if !ok {
		return model.Document{}, fmt.Errorf("document %s: missing frontmatter", id)
	}
	metaRaw, body, ok := strings.Cut(rest, "\n"+frontmatterFence+"\n")
	if !ok {
		// Fence at EOF without trailing newline after it.
		metaRaw, body, ok = strings.Cut(rest, "\n"+frontmatterFence)
		if !ok {
			return model.Document{}, fmt.Errorf("document %s: unterminated frontmatter", id)
		}
	}
	var meta frontmatter
	if err := yaml.Unmarshal([]byte(metaRaw+"\n"), &meta); err != nil {
		return model.Document{}, fmt.Errorf("document %s: decode frontmatter: %w", id, err)
	}
	doc := model.Document{
		ID:         id,
		Title:      meta.Title,
		Content:    body,
		StartDate:  meta.StartDate,
		EndDate:    meta.EndDate,
		Status:     meta.Status,
		CreatedAt:  meta.CreatedAt,
		UpdatedAt:  meta.UpdatedAt,
		LegacyDate: meta.LegacyDate,
	}
	migrateLegacyDate(&doc)
	return doc, nil
}

func (s *FileStore) docPath(id string) string {
	return filepath.Join(s.dir, id+".md")
}

// writeDocument writes via a temp file + rename so readers (and the
// fsnotify watcher) never observe a half-written document.
func (s *FileStore) writeDocument(doc model.Document) error {
	b, err := encodeDocumentFile(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+doc.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmpName, s.docPath(doc.ID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (s *FileStore) readDocument(id string) (model.Document, bool, error) {
	b, err := os.ReadFile(s.docPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return model.Document{}, false, nil
	}
	if err != nil {
		return model.Document{}, false, fmt.Errorf("read document: %w", err)
	}
	doc, err := decodeDocumentFile(id, b)
	if err != nil {
		return model.Document{}, false, err
	}
	return doc, true, nil
}

func (s *FileStore) Create(ctx context.Context, input model.DocumentInput) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensure(); err != nil {
		return model.Document{}, fmt.Errorf("create document: %w", err)
	}

	doc := newDocumentFromInput(input, nowUnixMilli())
	id, err := freshID(func(id string) (bool, error) {
		_, err := os.Stat(s.docPath(id))
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("create document: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return model.Document{}, err
	}
	doc.ID = id

	if err := s.writeDocument(doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (model.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDocument(id)
}

func (s *FileStore) Update(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok, err := s.readDocument(id)
	if err != nil {
		return model.Document{}, err
	}
	if !ok {
		return model.Document{}, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}

	applyPatch(&doc, patch, nowUnixMilli())

	if err := s.writeDocument(doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.docPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *FileStore) ListAll(ctx context.Context) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	sortByUpdatedDesc(docs)
	return docs, nil
}

func (s *FileStore) Summaries(ctx context.Context) ([]model.DocumentSummary, error) {
	docs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Summary())
	}
	return out, nil
}

func (s *FileStore) ListByDateRange(ctx context.Context, from, to int64) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	out := docs[:0]
	for _, doc := range docs {
		if rangesOverlap(doc.StartDate, doc.EndDate, from, to) {
			out = append(out, doc)
		}
	}
	sortByUpdatedDesc(out)
	return out, nil
}

func (s *FileStore) Search(ctx context.Context, query string) ([]model.Document, error) {
	docs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := docs[:0]
	for _, doc := range docs {
		if matchesQuery(doc, query) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *FileStore) loadAll() ([]model.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := []model.Document{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, ".") {
			continue
		}
		id := strings.TrimSuffix(name, ".md")
		doc, ok, err := s.readDocument(id)
		if err != nil {
			// A malformed stray file must not take the whole listing down.
			continue
		}
		if ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
