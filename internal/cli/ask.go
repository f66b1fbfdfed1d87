package cli

import (
	"context"
	"fmt"

	"resumelens/internal/ai"
	"resumelens/internal/common"
	"resumelens/internal/extract"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [resume-pdf] [question]",
	Short: "Ask a question about a resume",
	Long: `Ask a free-form question about a resume PDF. The resume text is
extracted first and passed to the AI assistant together with the question.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if askConfig.OutputFormat == "" {
			askConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(askConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAsk,
}

var askConfig common.CommandConfig

func init() {
	askCmd.Flags().StringVarP(&askConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	askCmd.Flags().StringVar(&askConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = askCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	question := args[1]
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	fileProcessor := common.NewFileProcessor(logger)
	data, err := fileProcessor.ReadResume(args[0], cfg.App.MaxFileSize)
	if err != nil {
		return err
	}

	extractor := extract.NewService(cfg, logger)
	result, err := extractor.ProcessPDF(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}

	// Create AI service for ask operation
	askAIConfig := cfg.GetAskConfig()
	aiService, err := ai.NewService(&askAIConfig, "ask", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	input := types.AskQuestionInput{
		ResumeText: result.Text,
		Question:   question,
	}

	logDetails := func(input types.AskQuestionInput, cfg common.CommandConfig) {
		logger.Info("Starting resume question",
			"question_chars", len(input.Question),
			"resume_chars", len(input.ResumeText),
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	askOperation := func(ctx context.Context, input types.AskQuestionInput) (types.AskQuestionOutput, *ai.TokenUsage, error) {
		return aiService.AskQuestion(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		askConfig,
		input,
		askOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}
	logger.Info("Resume question completed successfully")
	return nil
}
