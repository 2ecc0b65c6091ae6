package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"clipnote/common"
	"clipnote/config"
	"clipnote/session"
)

// WriteBundle packs the whole session into a single zip archive: one HTML
// document per note, a manifest and any saved attachments. The archive is
// assembled in a temporary file and rewritten without data descriptors so
// strict readers accept it.
func WriteBundle(cfg config.ExportConfig, entries []session.Entry, attachmentDir, outputPath string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), "bundle-*.zip")
	if err != nil {
		return fmt.Errorf("unable to create temporary archive: %w", err)
	}
	tmpName := tmp.Name()

	zw := zip.NewWriter(tmp)
	if err := writeBundleContent(zw, cfg, entries, attachmentDir, log); err != nil {
		zw.Close()
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	// make sure buffers are flushed before continuing
	if err := zw.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("unable to finalize output file: %w", err)
	}
	defer os.Remove(tmpName)

	return copyZipWithoutDataDescriptors(tmpName, outputPath)
}

func writeBundleContent(zw *zip.Writer, cfg config.ExportConfig, entries []session.Entry, attachmentDir string, log *zap.Logger) error {
	manifest := struct {
		Version int             `json:"version"`
		Entries []session.Entry `json:"entries"`
	}{Version: 1, Entries: entries}

	w, err := zw.Create("session.json")
	if err != nil {
		return fmt.Errorf("unable to create manifest: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("unable to write manifest: %w", err)
	}

	for i, e := range entries {
		name, err := FileName(cfg, e, i+1, common.ExportFmtHTML.Ext())
		if err != nil {
			return err
		}
		w, err := zw.Create(path.Join("notes", name))
		if err != nil {
			return fmt.Errorf("unable to create note '%s': %w", name, err)
		}
		if err := WriteHTML(w, noteTitle(e), Blocks(e.Runs)); err != nil {
			return fmt.Errorf("unable to render note '%s': %w", name, err)
		}

		if e.Attachment == "" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(attachmentDir, e.Attachment))
		if err != nil {
			log.Warn("Skipping unreadable attachment", zap.String("file", e.Attachment), zap.Error(err))
			continue
		}
		w, err = zw.Create(path.Join("attachments", e.Attachment))
		if err != nil {
			return fmt.Errorf("unable to create attachment '%s': %w", e.Attachment, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("unable to write attachment '%s': %w", e.Attachment, err)
		}
	}
	return nil
}

func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}
