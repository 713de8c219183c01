package metrics

import (
	"fmt"
	"log"
	"os"
	"path"
	"sync"
	"time"
)

type Logger interface {
	Log(info *OpInfo)
}

type StdoutLogger struct{}

func NewStdoutLogger() *StdoutLogger {
	return &StdoutLogger{}
}

func (l *StdoutLogger) Log(info *OpInfo) {
	infoStr, err := info.ToJSON()
	if err == nil {
		log.Print(infoStr)
	} else {
		log.Printf("StdoutLogger: error: %v", err)
	}
}

const defaultMaxLogFileSize = 64 * 1024 * 1024
const defaultMaxLogFiles = 10

// LogFileName is the active log file inside a FileLogger's directory.
// Rotated files carry a numeric suffix: csvgrid.log.0, csvgrid.log.1, ...
const LogFileName = "csvgrid.log"

// FileLogger appends one JSON line per record to LogDir/csvgrid.log and
// rotates the file once it reaches MaxLogFileSize bytes. When MaxLogFiles
// rotated files exist the oldest one is overwritten.
type FileLogger struct {
	LogDir         string
	MaxLogFileSize int64
	MaxLogFiles    int
	Verbose        bool

	mu   sync.Mutex
	file *os.File
}

func NewFileLogger(logDir string, maxLogFileSize int64, maxLogFiles int, verbose bool) (*FileLogger, error) {
	if maxLogFileSize <= 0 {
		maxLogFileSize = defaultMaxLogFileSize
	}
	if maxLogFiles <= 0 {
		maxLogFiles = defaultMaxLogFiles
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	logger := &FileLogger{
		LogDir:         logDir,
		MaxLogFileSize: maxLogFileSize,
		MaxLogFiles:    maxLogFiles,
		Verbose:        verbose,
	}
	f, err := logger.openLogFile()
	if err != nil {
		return nil, err
	}
	logger.file = f
	return logger, nil
}

func (l *FileLogger) Log(info *OpInfo) {
	infoStr, err := info.ToJSON()
	if err != nil {
		log.Printf("FileLogger: info.ToJSON() error: %v", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}

	if err = l.tryRotateLogFile(); err != nil {
		log.Printf("FileLogger: log rotation error: %v", err)
	}
	if _, err = l.file.WriteString(infoStr); err != nil {
		log.Printf("FileLogger: write error: %v", err)
		return
	}
	l.file.Sync()
}

func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *FileLogger) openLogFile() (*os.File, error) {
	return os.OpenFile(path.Join(l.LogDir, LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func (l *FileLogger) tryRotateLogFile() error {
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.MaxLogFileSize {
		return nil
	}

	var target string
	var oldest time.Time
	for i := 0; i < l.MaxLogFiles; i++ {
		candidate := path.Join(l.LogDir, fmt.Sprintf("%s.%d", LogFileName, i))
		st, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			target = candidate
			break
		}
		if err == nil && (len(target) == 0 || st.ModTime().Before(oldest)) {
			target = candidate
			oldest = st.ModTime()
		}
	}

	l.file.Close()
	l.file = nil
	if err = os.Rename(path.Join(l.LogDir, LogFileName), target); err != nil {
		return err
	}
	if l.Verbose {
		log.Printf("FileLogger: log file rotated: %v", target)
	}

	l.file, err = l.openLogFile()
	return err
}

// NewRunLogger picks the logger for one run: a FileLogger when dir is set,
// stdout when verbose, otherwise none.
func NewRunLogger(dir string, verbose bool) (Logger, error) {
	if len(dir) > 0 {
		logger, err := NewFileLogger(dir, 0, 0, verbose)
		if err != nil {
			return nil, err
		}
		return logger, nil
	}
	if verbose {
		return NewStdoutLogger(), nil
	}
	return nil, nil
}
