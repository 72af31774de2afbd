package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	payload := `[
		{"sender": "0541234567", "text": "practice done", "timestamp": "10:00, 01.02.2024"},
		{"sender": "Dana Levi", "text": "a question", "timestamp": "10:05, 01.02.2024"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	src := NewFileSource(path, testLogger())
	messages, err := src.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "0541234567", messages[0].Sender)
	assert.Equal(t, "practice done", messages[0].Text)
	assert.Equal(t, "10:05, 01.02.2024", messages[1].Timestamp)
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"), testLogger())

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFileSource_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	src := NewFileSource(path, testLogger())

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}
