package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
)

// Logger prints console progress lines. Every call ends with exactly one
// newline.
type Logger struct {
	Debug bool

	mu  sync.Mutex
	out io.Writer
}

func NewLogger(debug bool) *Logger {
	return &Logger{Debug: debug, out: os.Stdout}
}

// SetOutput redirects the logger, e.g. above a running progress bar.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *Logger) printf(style *lipgloss.Style, format string, args ...any) {
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if style != nil {
		line = style.Render(line)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintln(l.out, line)
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.Debug {
		l.printf(&debugStyle, "[DEBUG] "+format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.printf(nil, format, args...)
}

func (l *Logger) Successf(format string, args ...any) {
	l.printf(&successStyle, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.printf(&warnStyle, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.printf(&errorStyle, "[ERROR] "+format, args...)
}
