package push

import (
	"context"

	"go.uber.org/zap"
)

// LogDisplayer records every notification it is asked to show. It stands
// in for a real presentation surface when the worker runs without one.
type LogDisplayer struct {
	logger *zap.Logger
}

// NewLogDisplayer creates a displayer writing to the given logger.
func NewLogDisplayer(logger *zap.Logger) *LogDisplayer {
	return &LogDisplayer{logger: logger}
}

func (d *LogDisplayer) Show(_ context.Context, title string, opts DisplayOptions) error {
	d.logger.Info("Notification",
		zap.String("title", title),
		zap.String("body", opts.Body),
		zap.String("url", opts.URL),
		zap.String("tag", opts.Tag),
	)
	return nil
}

// HeadlessWindows is a Windows implementation with no pages to manage.
// Click targets are logged instead of opened.
type HeadlessWindows struct {
	logger *zap.Logger
}

// NewHeadlessWindows creates a pageless Windows implementation.
func NewHeadlessWindows(logger *zap.Logger) *HeadlessWindows {
	return &HeadlessWindows{logger: logger}
}

func (w *HeadlessWindows) All(context.Context) ([]Window, error) {
	return nil, nil
}

func (w *HeadlessWindows) Open(_ context.Context, url string) error {
	w.logger.Info("Notification click target", zap.String("url", url))
	return nil
}

func (w *HeadlessWindows) Claim(context.Context) error {
	return nil
}
