package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/internal/columns"
	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/internal/extraction"
	"github.com/docgrid/docgrid/internal/workflow"
	"github.com/docgrid/docgrid/pkg/lifecycle"
	"github.com/docgrid/docgrid/pkg/pagination"
	"github.com/docgrid/docgrid/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDocuments serves a fixed document and records progress updates.
type fakeDocuments struct {
	mu       sync.Mutex
	doc      documents.Document
	progress []int
}

func (f *fakeDocuments) Handler(int64) *documents.Handler { return nil }

func (f *fakeDocuments) List(context.Context, pagination.PageRequest, documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) Find(_ context.Context, id uuid.UUID) (*documents.Document, error) {
	if id != f.doc.ID {
		return nil, documents.ErrNotFound
	}
	doc := f.doc
	return &doc, nil
}

func (f *fakeDocuments) Create(context.Context, documents.CreateCommand) (*documents.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) Delete(context.Context, uuid.UUID) error { return errors.New("not implemented") }

func (f *fakeDocuments) Pending(context.Context) ([]documents.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) Values(context.Context, uuid.UUID) (map[uuid.UUID]documents.ExtractedValue, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) Value(context.Context, uuid.UUID, uuid.UUID) (*documents.ExtractedValue, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) SetValue(context.Context, uuid.UUID, uuid.UUID, documents.SetValueCommand) (*documents.ExtractedValue, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) PutValues(context.Context, uuid.UUID, []documents.ValueWrite) error {
	return errors.New("not implemented")
}

func (f *fakeDocuments) BeginProcessing(context.Context, uuid.UUID) (*documents.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) SetProgress(_ context.Context, _ uuid.UUID, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = append(f.progress, progress)
	return nil
}

func (f *fakeDocuments) CompleteProcessing(context.Context, uuid.UUID) (*documents.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) FailProcessing(context.Context, uuid.UUID, documents.ProcessingError) (*documents.Document, error) {
	return nil, errors.New("not implemented")
}

// fakeColumns serves a fixed enabled set.
type fakeColumns struct {
	enabled []columns.Column
}

func (f *fakeColumns) Handler() *columns.Handler { return nil }

func (f *fakeColumns) List(context.Context, pagination.PageRequest, columns.Filters) (*pagination.PageResult[columns.Column], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeColumns) Find(context.Context, uuid.UUID) (*columns.Column, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeColumns) Enabled(context.Context) ([]columns.Column, error) {
	return f.enabled, nil
}

func (f *fakeColumns) Create(context.Context, columns.CreateCommand) (*columns.Column, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeColumns) Update(context.Context, uuid.UUID, columns.UpdateCommand) (*columns.Column, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeColumns) Delete(context.Context, uuid.UUID) error { return errors.New("not implemented") }

type fakeStorage struct {
	blobs map[string][]byte
}

func (f *fakeStorage) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Upload(context.Context, string, io.Reader, string) error {
	return errors.New("not implemented")
}

func (f *fakeStorage) Download(_ context.Context, key string) (*storage.DownloadResult, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.DownloadResult{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   "application/octet-stream",
		ContentLength: int64(len(data)),
	}, nil
}

func (f *fakeStorage) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *fakeStorage) Delete(context.Context, string) error { return nil }

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.blobs[key]
	return ok, nil
}

type fakeCompleter struct {
	chatFn   func(ctx context.Context, prompt string) (string, error)
	visionFn func(ctx context.Context, prompt string, images []string) (string, error)
}

func (f *fakeCompleter) Chat(ctx context.Context, prompt string) (string, error) {
	return f.chatFn(ctx, prompt)
}

func (f *fakeCompleter) Vision(ctx context.Context, prompt string, images []string) (string, error) {
	return f.visionFn(ctx, prompt, images)
}

func textChain(text string) *extraction.Chain {
	return extraction.NewChainWith([]extraction.TextStrategy{{
		Name: "fixed",
		Extract: func(context.Context, string) (string, error) {
			return text, nil
		},
	}}, 1, discardLogger())
}

func testRuntime(docs *fakeDocuments, cols *fakeColumns, store *fakeStorage, completer extraction.Completer, chain *extraction.Chain) *workflow.Runtime {
	return &workflow.Runtime{
		Storage:   store,
		Documents: docs,
		Columns:   cols,
		Chain:     chain,
		Client:    extraction.NewClient(completer, 0, discardLogger()),
		Model:     "test-model",
		Logger:    discardLogger(),
	}
}

func pdfDocument() documents.Document {
	return documents.Document{
		ID:          uuid.New(),
		ProjectID:   uuid.New(),
		Filename:    "invoice.pdf",
		ContentType: "application/pdf",
		Extension:   ".pdf",
		StorageKey:  "documents/test",
		Status:      documents.StatusProcessing,
	}
}

func enabledColumn(name string) columns.Column {
	return columns.Column{
		ID:                uuid.New(),
		Name:              name,
		Prompt:            "Find the " + name,
		Type:              columns.TypeText,
		ExtractionEnabled: true,
	}
}

func TestExecutePDFPath(t *testing.T) {
	doc := pdfDocument()
	col := enabledColumn("Invoice Number")

	docs := &fakeDocuments{doc: doc}
	cols := &fakeColumns{enabled: []columns.Column{col}}
	store := &fakeStorage{blobs: map[string][]byte{doc.StorageKey: []byte("%PDF-1.7 raw bytes")}}

	var seenPrompt string
	completer := &fakeCompleter{
		chatFn: func(_ context.Context, prompt string) (string, error) {
			seenPrompt = prompt
			return fmt.Sprintf(`[{"column_id": %q, "value": "INV-2041", "confidence": 0.9}]`, col.ID), nil
		},
	}

	rt := testRuntime(docs, cols, store, completer, textChain("invoice body text"))

	result, err := workflow.Execute(context.Background(), rt, doc.ID)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.DocumentID != doc.ID {
		t.Errorf("document id = %v", result.DocumentID)
	}
	if result.Kind != extraction.KindPDF {
		t.Errorf("kind = %q, want pdf", result.Kind)
	}
	if result.Fields != 1 {
		t.Errorf("fields = %d, want 1", result.Fields)
	}
	if result.Malformed {
		t.Error("result marked malformed")
	}
	if len(result.Attempts) != 1 || !result.Attempts[0].Succeeded {
		t.Errorf("attempts = %+v", result.Attempts)
	}
	if !containsAll(seenPrompt, "invoice body text", col.ID.String()) {
		t.Errorf("prompt = %q", seenPrompt)
	}

	if len(result.Writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(result.Writes))
	}
	write := result.Writes[0]
	if write.ColumnID != col.ID {
		t.Errorf("write column = %v", write.ColumnID)
	}
	if write.Value != "INV-2041" || write.Confidence != 0.9 {
		t.Errorf("write = %+v", write)
	}
	if write.Method != documents.MethodAI {
		t.Errorf("method = %q, want ai", write.Method)
	}
	if write.Model == nil || *write.Model != "test-model" {
		t.Errorf("model = %v", write.Model)
	}
	if write.Version == nil || *write.Version != extraction.VersionText {
		t.Errorf("version = %v", write.Version)
	}

	wantProgress := []int{25, 50, 75}
	if len(docs.progress) != len(wantProgress) {
		t.Fatalf("progress updates = %v", docs.progress)
	}
	for i, want := range wantProgress {
		if docs.progress[i] != want {
			t.Errorf("progress[%d] = %d, want %d", i, docs.progress[i], want)
		}
	}
}

func TestExecuteImagePath(t *testing.T) {
	doc := pdfDocument()
	doc.Filename = "receipt.png"
	doc.ContentType = "image/png"
	doc.Extension = ".png"
	col := enabledColumn("Total")

	docs := &fakeDocuments{doc: doc}
	cols := &fakeColumns{enabled: []columns.Column{col}}
	store := &fakeStorage{blobs: map[string][]byte{doc.StorageKey: []byte("png bytes")}}

	var seenImages []string
	completer := &fakeCompleter{
		visionFn: func(_ context.Context, _ string, images []string) (string, error) {
			seenImages = images
			return fmt.Sprintf(`[{"column_id": %q, "value": "$42.10", "confidence": 0.75}]`, col.ID), nil
		},
	}

	// chain must not run on the vision path
	chain := extraction.NewChainWith([]extraction.TextStrategy{{
		Name: "never",
		Extract: func(context.Context, string) (string, error) {
			t.Error("text chain ran for image document")
			return "", errors.New("unexpected")
		},
	}}, 1, discardLogger())

	rt := testRuntime(docs, cols, store, completer, chain)

	result, err := workflow.Execute(context.Background(), rt, doc.ID)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Kind != extraction.KindImage {
		t.Errorf("kind = %q, want image", result.Kind)
	}
	if len(seenImages) != 1 || !containsAll(seenImages[0], "data:image/") {
		t.Errorf("images = %v, want one data URI", seenImages)
	}
	if len(result.Attempts) != 0 {
		t.Errorf("attempts = %+v, want none on vision path", result.Attempts)
	}

	write := result.Writes[0]
	if write.Value != "$42.10" {
		t.Errorf("write value = %q", write.Value)
	}
	if write.Version == nil || *write.Version != extraction.VersionVision {
		t.Errorf("version = %v", write.Version)
	}
}

func TestExecuteNoEnabledColumns(t *testing.T) {
	doc := pdfDocument()
	docs := &fakeDocuments{doc: doc}
	cols := &fakeColumns{}
	store := &fakeStorage{blobs: map[string][]byte{doc.StorageKey: []byte("bytes")}}

	completer := &fakeCompleter{}
	rt := testRuntime(docs, cols, store, completer, textChain("text"))

	_, err := workflow.Execute(context.Background(), rt, doc.ID)
	if err == nil {
		t.Fatal("Execute() error = nil, want no-columns failure")
	}
	if !containsAll(err.Error(), workflow.ErrNoColumns.Error()) {
		t.Fatalf("error = %v, want no-columns failure", err)
	}
}

func TestExecuteMissingBlob(t *testing.T) {
	doc := pdfDocument()
	docs := &fakeDocuments{doc: doc}
	cols := &fakeColumns{enabled: []columns.Column{enabledColumn("Invoice Number")}}
	store := &fakeStorage{}

	rt := testRuntime(docs, cols, store, &fakeCompleter{}, textChain("text"))

	_, err := workflow.Execute(context.Background(), rt, doc.ID)
	if err == nil {
		t.Fatal("Execute() error = nil, want fetch failure")
	}
	if !containsAll(err.Error(), extraction.ErrContentUnavailable.Error()) {
		t.Fatalf("error = %v, want content-unavailable failure", err)
	}
}

func TestExecuteUnknownDocument(t *testing.T) {
	docs := &fakeDocuments{doc: pdfDocument()}
	cols := &fakeColumns{enabled: []columns.Column{enabledColumn("Invoice Number")}}
	store := &fakeStorage{}

	rt := testRuntime(docs, cols, store, &fakeCompleter{}, textChain("text"))

	_, err := workflow.Execute(context.Background(), rt, uuid.New())
	if err == nil {
		t.Fatal("Execute() error = nil, want lookup failure")
	}
	if !containsAll(err.Error(), workflow.ErrDocumentNotFound.Error()) {
		t.Fatalf("error = %v, want document-not-found failure", err)
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !bytes.Contains([]byte(s), []byte(p)) {
			return false
		}
	}
	return true
}
