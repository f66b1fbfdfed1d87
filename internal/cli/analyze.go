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

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-pdf] [job-description-file]",
	Short: "Analyze a resume with AI",
	Long: `Analyze a resume PDF using one of the built-in analysis modes.
The optional second argument is a plain-text job description used as
context, which the job_match mode compares the resume against.

Available modes:
- quick_overview: short summary of the resume
- issues: problems and red flags
- enhancement: concrete improvement suggestions
- job_match: fit against the provided job description
- complete: full structured analysis with strengths and weaknesses`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if !types.AnalysisType(analyzeType).Valid() {
			return fmt.Errorf("unsupported analysis type '%s'. Supported types: %v",
				analyzeType, types.AnalysisTypes)
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeType   string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeType, "type", "t", string(types.AnalysisQuickOverview), "Analysis type")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})

	// Add completion for type flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, len(types.AnalysisTypes))
		for i, mode := range types.AnalysisTypes {
			modes[i] = string(mode)
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	data, err := fileProcessor.ReadResume(args[0], cfg.App.MaxFileSize)
	if err != nil {
		return err
	}

	jobContext := ""
	if len(args) == 2 {
		contents, err := fileProcessor.ValidateAndReadFiles(args[1])
		if err != nil {
			return err
		}
		jobContext = contents[0]
	}

	extractor := extract.NewService(cfg, logger)
	result, err := extractor.ProcessPDF(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}

	// Create AI service for analyze operation
	analyzeAIConfig := cfg.GetAnalyzeConfig()
	aiService, err := ai.NewService(&analyzeAIConfig, "analyze", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	input := types.AnalyzeResumeInput{
		ResumeText:   result.Text,
		AnalysisType: types.AnalysisType(analyzeType),
		JobContext:   jobContext,
	}

	logDetails := func(input types.AnalyzeResumeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"analysis_type", input.AnalysisType,
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobContext),
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	analyzeOperation := func(ctx context.Context, input types.AnalyzeResumeInput) (types.AnalyzeResumeOutput, *ai.TokenUsage, error) {
		return aiService.AnalyzeResume(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		input,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
