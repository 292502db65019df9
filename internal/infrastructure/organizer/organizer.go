// Package organizer relocates classified files into the category-organized
// archive. A destination name is claimed with O_EXCL before the move, so
// concurrent workers can never overwrite each other.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

type Organizer struct {
	archiveRoot string
}

func New(archiveRoot string) (*Organizer, error) {
	if archiveRoot == "" {
		archiveRoot = "./data/organized_storage"
	}
	if err := os.MkdirAll(archiveRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &Organizer{archiveRoot: archiveRoot}, nil
}

// Move relocates sourcePath to archiveRoot/category/{stem}{ext}. On name
// collision a numeric disambiguator is appended before the extension until
// a free name is claimed. The move is a single atomic rename on the same
// filesystem; across devices it degrades to copy-then-delete with the
// partial destination cleaned up on failure.
func (o *Organizer) Move(ctx context.Context, sourcePath, category, stem, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	dir := filepath.Join(o.archiveRoot, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domain.WrapError(domain.ErrMove, "create category dir", err)
	}

	dest, err := o.claimDestination(dir, stem, ext)
	if err != nil {
		return "", err
	}

	if err := o.moveInto(sourcePath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// claimDestination reserves a collision-free name with an exclusive
// create. The placeholder is replaced by the moved file.
func (o *Organizer) claimDestination(dir, stem, ext string) (string, error) {
	for i := 0; ; i++ {
		name := stem + ext
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		dest := filepath.Join(dir, name)

		f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			return dest, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", domain.WrapError(domain.ErrMove, "claim destination", err)
		}
	}
}

func (o *Organizer) moveInto(sourcePath, dest string) error {
	err := os.Rename(sourcePath, dest)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.EXDEV) {
		return copyThenDelete(sourcePath, dest)
	}

	_ = os.Remove(dest)
	return domain.WrapError(domain.ErrMove, "rename", err)
}

// copyThenDelete reports success only once the destination is fully
// written and the source is removed. Any failure leaves the source intact
// and removes the partial destination.
func copyThenDelete(sourcePath, dest string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		_ = os.Remove(dest)
		return domain.WrapError(domain.ErrMove, "open source", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		_ = os.Remove(dest)
		return domain.WrapError(domain.ErrMove, "open destination", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dest)
		return domain.WrapError(domain.ErrMove, "copy", err)
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		_ = os.Remove(dest)
		return domain.WrapError(domain.ErrMove, "sync destination", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dest)
		return domain.WrapError(domain.ErrMove, "close destination", err)
	}

	if err := os.Remove(sourcePath); err != nil {
		// Keep exactly one copy: drop the destination, leave the source.
		_ = os.Remove(dest)
		return domain.WrapError(domain.ErrMove, "remove source", err)
	}
	return nil
}
