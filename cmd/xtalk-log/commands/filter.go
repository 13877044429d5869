package commands

import (
	"fmt"
	"io"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// RunFilter copies the events of path matching criteria into a new trace
// file at output and returns how many were written.
func RunFilter(path, output string, criteria Criteria) (int, error) {
	filter, err := criteria.Filter()
	if err != nil {
		return 0, err
	}

	reader, err := trace.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	logger, err := trace.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output trace: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
		count++
	}
	return count, nil
}
