package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// RawDocument is one undecoded file from a corpus store.
type RawDocument struct {
	Name string
	Data []byte
}

// Source reads every document of a corpus. Implementations return
// documents in a stable order.
type Source interface {
	ReadAll(ctx context.Context) ([]RawDocument, error)
}

// DirSource reads *.yaml and *.yml files from a file system tree.
type DirSource struct {
	FS fs.FS
}

// NewDirSource returns a DirSource rooted at dir on the local disk.
func NewDirSource(dir string) *DirSource {
	return &DirSource{FS: os.DirFS(dir)}
}

func (s *DirSource) ReadAll(ctx context.Context) ([]RawDocument, error) {
	var docs []RawDocument
	err := fs.WalkDir(s.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isDocumentName(p) {
			return nil
		}
		data, err := fs.ReadFile(s.FS, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, RawDocument{Name: p, Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus directory: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func isDocumentName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
