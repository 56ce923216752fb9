package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tapsync/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [lines.json|project_id]",
	Short: "Translate line text to another language using AI",
	Long: `Translate the text of every line using an LLM provider. Timings and the
original text (rawText) are kept, so the result can be exported as is or,
with --bilingual, with the original above each translation.

Examples:
  tapsync translate lines.json --to japanese -o lines.ja.json
  tapsync translate 3f2a --to es --provider openai
  tapsync translate lines.json --to german --bilingual --provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("to", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Source language (optional)")
	translateCmd.Flags().
		Bool("bilingual", false, "Keep the original text above each translation")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("prompt", "", "Extra instructions for the model")
	translateCmd.Flags().
		Int("concurrency", translate.DefaultConcurrency, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of lines per API request")

	_ = translateCmd.MarkFlagRequired("to")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("to")
	inputLang, _ := cmd.Flags().GetString("language")
	bilingual, _ := cmd.Flags().GetBool("bilingual")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")

	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	provider := translate.Provider(strings.ToLower(providerStr))
	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}

	lines, _, err := loadLines(args[0], cfg, logger)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("no lines to translate")
	}

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
		Concurrency:    concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}
	defer translator.Close()

	logger.Infow("Translating lines",
		"lines", len(lines),
		"provider", provider,
		"target_language", targetLang,
		"concurrency", concurrency,
	)

	translated, err := translate.TranslateLines(ctx, translator, lines)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	if bilingual {
		translated = translate.Bilingual(translated)
	}

	logger.Infow("Translation complete", "lines", len(translated))

	out, err := encodeLines(translated)
	if err != nil {
		return err
	}
	return writeOutput(outputPath, out)
}
