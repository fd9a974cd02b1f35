package cli

import (
	"encoding/json"
	"fmt"

	"salaryscope/internal/cache"
	"salaryscope/internal/errors"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the analysis cache",
}

var cacheInvalidateFlags struct {
	jobID    string
	userID   string
	location string
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Remove cached analyses matching a pattern",
	Long: `Remove cached analyses matching the given job ID, user ID, or a
location substring. At least one selector is required; the pattern is a
conjunction, so multiple selectors narrow the match.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cacheInvalidateFlags.jobID == "" && cacheInvalidateFlags.userID == "" && cacheInvalidateFlags.location == "" {
			return fmt.Errorf("at least one of --job-id, --user-id, or --location is required")
		}

		analysisCache, logger, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer closeCache(analysisCache, logger)

		removed := analysisCache.Invalidate(cache.InvalidationPattern{
			JobID:             cacheInvalidateFlags.jobID,
			UserID:            cacheInvalidateFlags.userID,
			LocationSubstring: cacheInvalidateFlags.location,
		})
		fmt.Printf("Invalidated %d cached analyses\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		analysisCache, logger, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer closeCache(analysisCache, logger)

		removed := analysisCache.Clear()
		fmt.Printf("Cleared %d cached analyses\n", removed)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		analysisCache, logger, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer closeCache(analysisCache, logger)

		out, err := json.MarshalIndent(analysisCache.Stats(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	cacheInvalidateCmd.Flags().StringVar(&cacheInvalidateFlags.jobID, "job-id", "", "Job identifier to invalidate")
	cacheInvalidateCmd.Flags().StringVar(&cacheInvalidateFlags.userID, "user-id", "", "User identifier to invalidate")
	cacheInvalidateCmd.Flags().StringVar(&cacheInvalidateFlags.location, "location", "", "Location substring to invalidate")

	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
}

func openCache(cmd *cobra.Command) (*cache.AnalysisCache, *errors.Logger, error) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	analysisCache, err := cache.New(cfg.Cache, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open analysis cache: %w", err)
	}
	return analysisCache, logger, nil
}

func closeCache(analysisCache *cache.AnalysisCache, logger *errors.Logger) {
	if err := analysisCache.Close(); err != nil {
		logger.LogError(err, "Failed to close analysis cache")
	}
}
