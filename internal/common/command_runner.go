package common

import (
	"context"
	"fmt"
	"os"

	"salaryscope/internal/errors"
	"salaryscope/internal/types"
)

// BuildRequestFunc builds the pipeline request from the posting text.
type BuildRequestFunc func(jobText string) types.AnalyzeRequest

// AnalyzeFunc is the pipeline entry point the command drives.
type AnalyzeFunc func(context.Context, types.AnalyzeRequest) (*types.AnalyzeResult, error)

// RunAnalysisCommand encapsulates the common logic for file-based CLI
// analysis commands: read and validate the posting file, run the
// pipeline, and write the formatted result.
func RunAnalysisCommand(
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	jobFile string,
	maxFileSize int64,
	buildRequest BuildRequestFunc,
	analyze AnalyzeFunc,
) error {
	fileProcessor := NewFileProcessor(logger)
	fileProcessor.SetMaxFileSize(maxFileSize)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(jobFile)
	if err != nil {
		return err
	}

	req := buildRequest(contents[0])

	if logger != nil {
		logger.Info("Analyzing job posting",
			"file", jobFile,
			"length", len(contents[0]),
			"force_refresh", req.ForceRefresh)
	}

	result, err := analyze(ctx, req)
	if err != nil {
		return err
	}

	if result.Cached {
		fmt.Fprintf(os.Stderr, "Served from cache (age %s)\n", result.CacheAge)
	}

	return outputHandler.HandleOutput(*result, cmdConfig)
}
