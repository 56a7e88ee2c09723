package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

// Document Command Tests

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "add")
	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "status")
	assert.Contains(t, commandNames, "delete")
}

// Document Add Tests

func TestDocumentAddCmd_RequiresTwoArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "add", "only-name"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestDocumentAddCmd_PrintsResult(t *testing.T) {
	cleanup := setupTestServices(&mockChatService{}, &mockIngestService{doc: readyDoc()})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "add", "Test Document", "doc.txt"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "doc-1")
	assert.Contains(t, buf.String(), "3 chunks")
}

func TestDocumentAddCmd_FailedIngestShowsReason(t *testing.T) {
	failed := readyDoc()
	failed.Status = domain.StatusError
	failed.StatusReason = "fetching source failed: not found"

	cleanup := setupTestServices(&mockChatService{}, &mockIngestService{
		doc: failed,
		err: errors.New("fetching source failed: not found"),
	})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "add", "Test Document", "missing.txt"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, buf.String(), "fetching source failed")
	assert.Contains(t, buf.String(), "run add again to retry")
}

// Document List Tests

func TestDocumentListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(&mockChatService{}, &mockIngestService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents ingested yet")
}

func TestDocumentListCmd_PrintsDocuments(t *testing.T) {
	failed := domain.Document{
		ID:           "doc-2",
		Name:         "Broken",
		Status:       domain.StatusError,
		StatusReason: "embedding failed",
	}
	cleanup := setupTestServices(&mockChatService{}, &mockIngestService{
		docs: []domain.Document{*readyDoc(), failed},
	})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "doc-1")
	assert.Contains(t, buf.String(), "doc-2")
	assert.Contains(t, buf.String(), "reason: embedding failed")
}

// Document Status Tests

func TestDocumentStatusCmd_PrintsRecord(t *testing.T) {
	cleanup := setupTestServices(&mockChatService{}, &mockIngestService{doc: readyDoc()})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "status", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Status:   ready")
	assert.Contains(t, buf.String(), "Chunks:   3")
}

func TestDocumentStatusCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices(&mockChatService{}, &mockIngestService{doc: readyDoc()})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "status", "nope"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}

// Document Delete Tests

func TestDocumentDeleteCmd_Deletes(t *testing.T) {
	ingest := &mockIngestService{doc: readyDoc()}
	cleanup := setupTestServices(&mockChatService{}, ingest)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "delete", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, ingest.deleted)
	assert.Contains(t, buf.String(), "Deleted document doc-1")
}
