package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/activity"
)

// FileSource reads an exported batch of raw chat messages from a JSON
// file. The export is produced upstream of this service, one array of
// objects with sender, text and timestamp fields.
type FileSource struct {
	path   string
	logger *logrus.Logger
}

func NewFileSource(path string, logger *logrus.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

func (s *FileSource) Fetch(_ context.Context) ([]activity.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file %s: %w", s.path, err)
	}

	var messages []activity.RawMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse export file %s: %w", s.path, err)
	}

	s.logger.Infof("Fetched %d messages from %s.", len(messages), s.path)
	return messages, nil
}
