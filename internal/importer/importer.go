// Package importer turns a directory of markdown files into notes.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"keepnotes/internal/contextutil"
	"keepnotes/internal/service"
)

// Result summarizes an import run.
type Result struct {
	Imported int
	Skipped  []string // RelPaths that could not be imported
}

// Importer creates notes from markdown files.
//
// Each file becomes one note: the first level-one heading (or the file name)
// is the title, the whole file is the body and every folder on the relative
// path becomes a label.
type Importer struct {
	notes    service.NoteService
	markdown goldmark.Markdown
}

// New creates a new Importer.
func New(notes service.NoteService) *Importer {
	return &Importer{notes: notes, markdown: goldmark.New()}
}

// ImportDir imports every markdown file under root. Files the note service
// rejects as invalid (for example empty ones) are skipped; any other error
// stops the run.
func (im *Importer) ImportDir(ctx context.Context, root string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	var res Result

	files, err := Scan(ctx, root)
	if err != nil {
		return res, err
	}

	for _, f := range files {
		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return res, fmt.Errorf("read %s: %w", f.RelPath, err)
		}

		input := service.NoteInput{
			Title:  im.title(content, f.RelPath),
			Body:   string(content),
			Labels: folderLabels(f.Folder),
		}
		note, err := im.notes.Create(ctx, input)
		if errors.Is(err, service.ErrInvalidInput) {
			logger.WarnContext(ctx, "skipping file", "path", f.RelPath, "error", err)
			res.Skipped = append(res.Skipped, f.RelPath)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("import %s: %w", f.RelPath, err)
		}
		logger.DebugContext(ctx, "file imported", "path", f.RelPath, "note_id", note.ID)
		res.Imported++
	}

	logger.InfoContext(ctx, "import finished", "root", root, "imported", res.Imported, "skipped", len(res.Skipped))
	return res, nil
}

// title returns the text of the first level-one heading, or the file name
// without extension.
func (im *Importer) title(content []byte, relPath string) string {
	doc := im.markdown.Parser().Parse(text.NewReader(content))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(headingText(h, content))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if title != "" {
		return title
	}
	return strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
}

func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			continue
		}
		b.WriteString(headingText(c, source))
	}
	return b.String()
}

// folderLabels turns "work/projects" into ["work", "projects"].
func folderLabels(folder string) []string {
	if folder == "" {
		return nil
	}
	return strings.Split(folder, "/")
}
