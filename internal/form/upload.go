package form

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const uploadedCardSelector = ".jobs-document-upload-redesign-card__container"

type uploadHandler struct{}

func (uploadHandler) name() string { return "upload" }

func (uploadHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	input, ok := sec.find(ctx, "input[type='file']")
	if !ok {
		return false, nil
	}

	// A document card means something is attached already.
	if _, attached := sec.find(ctx, uploadedCardSelector); attached {
		return true, nil
	}

	kind, err := f.letters.ResumeOrCover(ctx, sec.question)
	if err != nil {
		return true, err
	}

	path := f.uploads.Resume
	if kind == "cover" {
		path, err = f.coverLetterPath(ctx)
		if err != nil {
			return true, err
		}
	}

	return true, input.Upload(ctx, path)
}

// coverLetterPath returns the static cover letter when one is configured,
// otherwise writes a generated letter for the current job. Generated letters
// are cached on disk per job so a form re-entry does not pay for a second
// model call.
func (f *Filler) coverLetterPath(ctx context.Context) (string, error) {
	if f.uploads.CoverLetter != "" {
		return f.uploads.CoverLetter, nil
	}

	outPath := filepath.Join(f.outputDir, "letters", slug(f.job.Company+"-"+f.job.Title)+".pdf")
	if _, err := os.Stat(outPath); err == nil {
		f.job.PDFPath = outPath
		return outPath, nil
	}

	text, err := f.letters.CoverLetter(ctx, f.job.Description)
	if err != nil {
		return "", fmt.Errorf("writing cover letter: %w", err)
	}
	if err := f.renderer.Render(text, outPath); err != nil {
		return "", fmt.Errorf("rendering cover letter: %w", err)
	}

	f.job.PDFPath = outPath
	return outPath, nil
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
