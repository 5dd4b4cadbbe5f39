package log

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

// NewMockEntry returns a trace level entry which is recorded by the returned hook
func NewMockEntry() (*logrus.Entry, *MockLoggerHook) {
	logger, _ := test.NewNullLogger()
	logger.Level = logrus.TraceLevel

	hook := &MockLoggerHook{}
	hook.On("Fire", mock.Anything).Return(nil)

	logger.AddHook(hook)

	return logrus.NewEntry(logger), hook
}

// MockLoggerHook records the message and the fields of each log entry
type MockLoggerHook struct {
	mock.Mock

	Messages []string
	Fields   []logrus.Fields

	mu sync.Mutex
}

// Levels implements `logrus.Hook`.
func (h *MockLoggerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements `logrus.Hook`.
func (h *MockLoggerHook) Fire(entry *logrus.Entry) error {
	_ = h.Called(entry.Level)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.Messages = append(h.Messages, entry.Message)
	h.Fields = append(h.Fields, entry.Data)

	return nil
}

// Reset forgets all recorded entries
func (h *MockLoggerHook) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Messages = nil
	h.Fields = nil
}
