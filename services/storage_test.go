package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"strings"
	"testing"
)

// formFile builds a real multipart.FileHeader carrying content.
func formFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("document", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	reader := multipart.NewReader(body, w.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["document"][0]
}

func pdfContent() []byte {
	return append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 64)...)
}

func TestDiskStorageSaveAndRemove(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("storage error: %v", err)
	}

	fh := formFile(t, "birth.pdf", pdfContent())
	sf, err := storage.Save(fh, "birth_certificate")
	if err != nil {
		t.Fatalf("save error: %v", err)
	}
	if sf.FileName != "birth.pdf" {
		t.Fatalf("original name must be kept as metadata, got %s", sf.FileName)
	}
	if sf.MimeType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", sf.MimeType)
	}
	if !strings.Contains(sf.FilePath, "birth_certificate_") {
		t.Fatalf("stored name should carry the category: %s", sf.FilePath)
	}
	if sf.FileSize != int64(len(pdfContent())) {
		t.Fatalf("unexpected size: %d", sf.FileSize)
	}

	if _, err := os.Stat(sf.FilePath); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if err := storage.Remove(sf.FilePath); err != nil {
		t.Fatalf("remove error: %v", err)
	}
	if _, err := os.Stat(sf.FilePath); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone, got %v", err)
	}
}

func TestDiskStorageRejectsOversizedFile(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir(), 16)
	if err != nil {
		t.Fatalf("storage error: %v", err)
	}

	fh := formFile(t, "big.pdf", pdfContent())
	if _, err := storage.Save(fh, "medical_record"); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error for oversized file, got %v", err)
	}
}

func TestDiskStorageRejectsUnknownType(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("storage error: %v", err)
	}

	fh := formFile(t, "script.sh", []byte("#!/bin/sh\nrm -rf /\n"))
	if _, err := storage.Save(fh, "medical_record"); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error for unsupported type, got %v", err)
	}
}
