package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question through the gateway",
	Long: `Ask a question. The semantic cache is consulted first; on a miss the
answer is generated, optionally grounded in ingested documents, and
stored in the cache for the next similar question.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// ask flags.
var (
	askShadow bool
	askNoRAG  bool
	askJSON   bool
)

func init() {
	askCmd.Flags().BoolVar(&askShadow, "shadow", false, "Evaluate the cache without serving from it")
	askCmd.Flags().BoolVar(&askNoRAG, "no-rag", false, "Answer without retrieved document context")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the outcome as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	opts := domain.ChatOptions{
		ShadowMode: askShadow,
		RAGEnabled: !askNoRAG,
	}
	if configStore != nil {
		cfg := configStore.Current()
		if !cmd.Flags().Changed("shadow") {
			opts.ShadowMode = cfg.Cache.ShadowMode
		}
		if !cmd.Flags().Changed("no-rag") {
			opts.RAGEnabled = cfg.RAG.Enabled
		}
	}

	outcome, err := chatService.Ask(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		return printOutcomeJSON(cmd, args[0], outcome)
	}

	cmd.Println(outcome.Answer())
	printOutcomeDetails(cmd, outcome)
	return nil
}

// printOutcomeDetails prints per-turn diagnostics in verbose mode.
func printOutcomeDetails(cmd *cobra.Command, outcome domain.Outcome) {
	if !verbose {
		return
	}

	switch o := outcome.(type) {
	case domain.CacheHitOutcome:
		cmd.Printf("\n[cache hit: similarity %.3f, ~%d tokens saved, lookup %s]\n",
			o.Similarity, o.TokensSaved, o.CacheLatency)
	case domain.FreshGenerationOutcome:
		cmd.Printf("\n[generated: %d tokens, %d context chunks, generation %s]\n",
			o.TokensUsed, len(o.Context), o.GenerationLatency)
	case domain.ShadowOutcome:
		if o.CacheHit {
			cmd.Printf("\n[shadow: cache would have answered (similarity %.3f, ~%d tokens); generated %d tokens in %s]\n",
				o.Similarity, o.TokensSaved, o.TokensUsed, o.GenerationLatency)
		} else {
			cmd.Printf("\n[shadow: cache miss; generated %d tokens in %s]\n",
				o.TokensUsed, o.GenerationLatency)
		}
	}
}

// askResult is the JSON output shape of the ask command.
type askResult struct {
	Question      string  `json:"question"`
	Answer        string  `json:"answer"`
	Cached        bool    `json:"cached"`
	Shadow        bool    `json:"shadow,omitempty"`
	CacheHit      bool    `json:"cache_hit,omitempty"`
	Similarity    float64 `json:"similarity,omitempty"`
	MatchedPrompt string  `json:"matched_prompt,omitempty"`
	TokensUsed    int     `json:"tokens_used,omitempty"`
	TokensSaved   int     `json:"tokens_saved,omitempty"`
	ContextChunks int     `json:"context_chunks,omitempty"`
}

func printOutcomeJSON(cmd *cobra.Command, question string, outcome domain.Outcome) error {
	result := askResult{
		Question: question,
		Answer:   outcome.Answer(),
		Cached:   outcome.Cached(),
	}
	switch o := outcome.(type) {
	case domain.CacheHitOutcome:
		result.CacheHit = true
		result.Similarity = o.Similarity
		result.MatchedPrompt = o.MatchedPrompt
		result.TokensSaved = o.TokensSaved
	case domain.FreshGenerationOutcome:
		result.TokensUsed = o.TokensUsed
		result.ContextChunks = len(o.Context)
	case domain.ShadowOutcome:
		result.Shadow = true
		result.CacheHit = o.CacheHit
		result.Similarity = o.Similarity
		result.MatchedPrompt = o.MatchedPrompt
		result.TokensUsed = o.TokensUsed
		result.TokensSaved = o.TokensSaved
		result.ContextChunks = len(o.Context)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
