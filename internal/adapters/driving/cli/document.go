package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage the retrieval corpus",
	Long:  `Add, list, inspect or delete documents used for retrieval augmentation.`,
}

var documentAddCmd = &cobra.Command{
	Use:   "add [name] [locator]",
	Short: "Ingest a document",
	Long: `Fetch, chunk, embed and index a document. The locator is a file path
or an http(s) URL. A document that fails partway is kept in the error
state with a reason; run add again to retry it.`,
	Args: cobra.ExactArgs(2),
	RunE: runDocumentAdd,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show a document's ingestion status",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentStatus,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentStatusCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	doc, err := ingestService.Ingest(cmd.Context(), args[0], args[1])
	if err != nil {
		if doc != nil {
			cmd.Printf("Ingestion failed: %s\n", doc.StatusReason)
			cmd.Printf("Document %s is in the %s state; run add again to retry.\n", doc.ID, doc.Status)
			return err
		}
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	cmd.Printf("Ingested %q as %s\n", doc.Name, doc.ID)
	cmd.Printf("  %d words, %d chunks, status %s\n", doc.WordCount, doc.ChunkCount, doc.Status)
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docs, err := ingestService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %-20s  %-10s  %d chunks\n", doc.ID, doc.Name, doc.Status, doc.ChunkCount)
		if doc.StatusReason != "" {
			cmd.Printf("    reason: %s\n", doc.StatusReason)
		}
	}
	return nil
}

func runDocumentStatus(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	doc, err := ingestService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID:       %s\n", doc.ID)
	cmd.Printf("Name:     %s\n", doc.Name)
	cmd.Printf("Locator:  %s\n", doc.Locator)
	cmd.Printf("Status:   %s\n", doc.Status)
	if doc.StatusReason != "" {
		cmd.Printf("Reason:   %s\n", doc.StatusReason)
	}
	cmd.Printf("Words:    %d\n", doc.WordCount)
	cmd.Printf("Chunks:   %d\n", doc.ChunkCount)
	cmd.Printf("Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
