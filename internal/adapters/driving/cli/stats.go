package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and backend status",
	Long:  `Summarise the retrieval corpus and check that the configured backends are reachable.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docs, err := ingestService.List(cmd.Context())
	if err != nil {
		return err
	}

	var ready, failed, inFlight, chunks int
	for _, doc := range docs {
		switch {
		case doc.Status == domain.StatusReady:
			ready++
			chunks += doc.ChunkCount
		case doc.Status == domain.StatusError:
			failed++
		default:
			inFlight++
		}
	}

	cmd.Printf("Corpus: %d documents (%d ready, %d failed, %d in flight), %d chunks\n",
		len(docs), ready, failed, inFlight, chunks)

	if configStore != nil {
		cfg := configStore.Current()
		cmd.Printf("Cache:  enabled=%t shadow=%t ttl=%ds\n",
			cfg.Cache.Enabled, cfg.Cache.ShadowMode, cfg.Cache.TTLSeconds)
		cmd.Printf("RAG:    enabled=%t top_k=%d threshold=%.2f\n",
			cfg.RAG.Enabled, cfg.RAG.TopK, cfg.RAG.Threshold)
	}

	printBackendHealth(cmd)

	if statsRecorder != nil {
		snap := statsRecorder.Snapshot()
		if snap.Turns > 0 {
			cmd.Printf("Session: %d turns, hit rate %.0f%%, %d tokens used, %d saved\n",
				snap.Turns, snap.HitRate()*100, snap.TokensUsed, snap.TokensSaved)
		}
	}
	return nil
}

// printBackendHealth pings the generation and embedding backends.
func printBackendHealth(cmd *cobra.Command) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	if genService != nil {
		if err := genService.Ping(ctx); err != nil {
			cmd.Printf("LLM:    %s UNREACHABLE (%v)\n", genService.ModelName(), err)
		} else {
			cmd.Printf("LLM:    %s ok\n", genService.ModelName())
		}
	}
	if embedService != nil {
		if err := embedService.Ping(ctx); err != nil {
			cmd.Printf("Embed:  %s UNREACHABLE (%v)\n", embedService.ModelName(), err)
		} else {
			cmd.Printf("Embed:  %s ok\n", embedService.ModelName())
		}
	}
}
