package core

import (
	"archive/zip"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
)

const reportTemplateRoot = "templates/report"

//go:embed all:templates/report
var reportTemplateFS embed.FS

// DefaultTemplate packs the built in report template into a .docx archive.
func DefaultTemplate() ([]byte, error) {
	var names []string
	err := fs.WalkDir(reportTemplateFS, reportTemplateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking embedded report template: %w", err)
	}
	// [Content_Types].xml goes first, as Word writes it.
	sort.SliceStable(names, func(i, j int) bool {
		ci := path.Base(names[i]) == "[Content_Types].xml"
		cj := path.Base(names[j]) == "[Content_Types].xml"
		if ci != cj {
			return ci
		}
		return names[i] < names[j]
	})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		data, err := reportTemplateFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		w, err := zw.Create(name[len(reportTemplateRoot)+1:])
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TemplateSource returns the loader for report.template_path, or the built in
// template when no path is configured.
func TemplateSource(templatePath string) func() ([]byte, error) {
	if templatePath == "" {
		return DefaultTemplate
	}
	return func() ([]byte, error) {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("reading report template %s: %w", templatePath, err)
		}
		return data, nil
	}
}
