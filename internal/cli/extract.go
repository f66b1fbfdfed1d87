package cli

import (
	"fmt"
	"strings"

	"resumelens/internal/common"
	"resumelens/internal/extract"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [resume-pdf]",
	Short: "Extract text and fields from a resume PDF",
	Long: `Extract the text content of a resume PDF and parse the standard
resume fields (name, email, phone, education, skills, experience).

PDFs with a usable text layer are read directly. Scanned PDFs fall back
to OCR when Tesseract support is available.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if extractConfig.OutputFormat == "" {
			extractConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(extractConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runExtract,
}

var extractConfig common.CommandConfig

func init() {
	extractCmd.Flags().StringVarP(&extractConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().StringVar(&extractConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = extractCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	data, err := fileProcessor.ReadResume(args[0], cfg.App.MaxFileSize)
	if err != nil {
		return err
	}

	logger.Info("Starting resume extraction",
		"file", args[0],
		"size_bytes", len(data),
		"output_format", extractConfig.OutputFormat)

	extractor := extract.NewService(cfg, logger)
	result, err := extractor.ProcessPDF(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}

	logger.Info("Resume extraction completed successfully",
		"method", result.Method,
		"pages", result.PageCount,
		"words", len(strings.Fields(result.Text)))

	return common.NewOutputHandler(logger).HandleOutput(result, extractConfig)
}
