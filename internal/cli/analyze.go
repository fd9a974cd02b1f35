package cli

import (
	"fmt"

	"salaryscope/internal/cache"
	"salaryscope/internal/common"
	"salaryscope/internal/config"
	"salaryscope/internal/pipeline"
	"salaryscope/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [job-posting-file]",
	Short: "Analyze market compensation for a job posting",
	Long: `Analyze a job posting against live market signals and produce a full
compensation report.

The analysis includes:
- Salary range and total compensation estimate with provenance
- Cost-of-living, housing, and tax adjustments for the effective location
- Market demand, competition, and growth outlook
- Pros, cons, risks, and negotiation recommendations
- Per-section confidence scores and data source attribution`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

var analyzeFlags struct {
	jobLocation  string
	company      string
	userLocation string
	workMode     string
	currency     string
	jobID        string
	userID       string
	forceRefresh bool
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVar(&analyzeFlags.jobLocation, "location", "", "Job location hint when the posting omits one")
	analyzeCmd.Flags().StringVar(&analyzeFlags.company, "company", "", "Employer name, enables company intelligence signals")
	analyzeCmd.Flags().StringVar(&analyzeFlags.userLocation, "user-location", "", "Your location; overrides the posting's location for cost-of-living")
	analyzeCmd.Flags().StringVar(&analyzeFlags.workMode, "work-mode", "", "Work mode hint: remote, hybrid, or onsite")
	analyzeCmd.Flags().StringVar(&analyzeFlags.currency, "currency", "", "Preferred analysis currency (ISO code)")
	analyzeCmd.Flags().StringVar(&analyzeFlags.jobID, "job-id", "", "Stable job identifier for caching (default: content hash)")
	analyzeCmd.Flags().StringVar(&analyzeFlags.userID, "user-id", "", "User identifier for caching")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.forceRefresh, "force-refresh", false, "Bypass the cache and recompute the analysis")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	analysisCache, err := cache.New(cfg.Cache, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis cache: %w", err)
	}
	defer func() {
		if err := analysisCache.Close(); err != nil {
			logger.LogError(err, "Failed to close analysis cache")
		}
	}()

	var prompts *config.PromptStore
	if cfg.Pipeline.PromptsDir != "" {
		prompts, err = config.NewPromptStore(cfg.Pipeline.PromptsDir, logger)
		if err != nil {
			return fmt.Errorf("failed to load prompt overrides: %w", err)
		}
	}

	// One-shot command; no observability manager, metrics are skipped
	svc, err := pipeline.NewService(cfg, analysisCache, prompts, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis pipeline: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.LogError(err, "Failed to close analysis pipeline")
		}
	}()

	buildRequest := func(jobText string) types.AnalyzeRequest {
		return types.AnalyzeRequest{
			JobDescription: jobText,
			JobLocation:    analyzeFlags.jobLocation,
			Company:        analyzeFlags.company,
			UserLocation:   analyzeFlags.userLocation,
			WorkMode:       analyzeFlags.workMode,
			Currency:       analyzeFlags.currency,
			JobID:          analyzeFlags.jobID,
			UserID:         analyzeFlags.userID,
			ForceRefresh:   analyzeFlags.forceRefresh,
		}
	}

	err = common.RunAnalysisCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args[0],
		cfg.App.MaxFileSize,
		buildRequest,
		svc.Analyze,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze job posting: %w", err)
	}
	logger.Info("Compensation analysis completed successfully")
	return nil
}
