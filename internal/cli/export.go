package cli

import (
	"fmt"
	"path/filepath"

	"resumelens/internal/ai"
	"resumelens/internal/common"
	"resumelens/internal/extract"
	"resumelens/internal/report"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [resume-pdf]",
	Short: "Export a full resume analysis as a PDF report",
	Long: `Run the complete analysis over a resume PDF and write the result as
a PDF report, including the detected resume fields and the strengths and
weaknesses the analysis found. Use --job to pass a plain-text job
description as analysis context.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportOutput string
	exportJob    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "resume_analysis_report.pdf", "Report output path")
	exportCmd.Flags().StringVar(&exportJob, "job", "", "Job description file used as analysis context")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	data, err := fileProcessor.ReadResume(args[0], cfg.App.MaxFileSize)
	if err != nil {
		return err
	}

	jobContext := ""
	if exportJob != "" {
		contents, err := fileProcessor.ValidateAndReadFiles(exportJob)
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

	logger.Info("Starting report export",
		"file", args[0],
		"resume_chars", len(result.Text),
		"job_chars", len(jobContext),
		"output", exportOutput)

	analysis, tokenUsage, err := aiService.AnalyzeResume(cmd.Context(), types.AnalyzeResumeInput{
		ResumeText:   result.Text,
		AnalysisType: types.AnalysisComplete,
		JobContext:   jobContext,
	})
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	if tokenUsage != nil {
		logger.Info("AI token usage",
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens,
			"total_tokens", tokenUsage.TotalTokens)
	}

	pdfBytes, err := report.NewGenerator(logger).Render(types.ReportData{
		FileName: filepath.Base(args[0]),
		Fields:   result.Fields,
		Analyses: []types.AnalyzeResumeOutput{analysis},
	})
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := fileProcessor.WriteBinaryFile(exportOutput, pdfBytes); err != nil {
		return err
	}

	logger.Info("Report export completed successfully",
		"output", exportOutput,
		"report_bytes", len(pdfBytes),
		"manual", analysis.Manual)
	return nil
}
