package handler

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	defaultLogLines = 200
	maxLogLines     = 1000
)

// LogsHandler serves the tail of the sync log file for the monitoring page.
type LogsHandler struct {
	File string // path of the sync log file
}

// logFileInfo describes the log file itself so the monitor can show size
// and freshness next to the tailed content.
type logFileInfo struct {
	Exists   bool   `json:"exists"`
	Size     int64  `json:"size"`
	Modified *int64 `json:"modified"`
	Readable bool   `json:"readable"`
	Path     string `json:"path,omitempty"`
}

// GetLogs returns the last N lines of the sync log (lines parameter,
// clamped to 1..1000, default 200). A missing file is not an error: the
// response carries a hint that no sync ran yet.
func (h *LogsHandler) GetLogs(c echo.Context) error {
	lines := defaultLogLines
	if n, err := strconv.Atoi(c.QueryParam("lines")); err == nil {
		switch {
		case n < 1:
			lines = 1
		case n > maxLogLines:
			lines = maxLogLines
		default:
			lines = n
		}
	}

	info := statLogFile(h.File)
	if !info.Exists {
		return c.JSON(http.StatusOK, echo.Map{
			"success":   true,
			"logs":      "",
			"message":   "Arquivo de log não encontrado. Execute uma sincronização primeiro.",
			"lineCount": 0,
			"info":      info,
		})
	}

	content, err := tailLines(h.File, lines)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   "Erro ao ler arquivo de log",
			"info":    info,
		})
	}

	count := 0
	if content != "" {
		count = strings.Count(content, "\n") + 1
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"logs":           content,
		"lineCount":      count,
		"requestedLines": lines,
		"info":           info,
		"timestamp":      time.Now().UTC().Format("2006-01-02 15:04:05"),
	})
}

func statLogFile(path string) logFileInfo {
	fi, err := os.Stat(path)
	if err != nil {
		return logFileInfo{}
	}
	mod := fi.ModTime().Unix()
	return logFileInfo{
		Exists:   true,
		Size:     fi.Size(),
		Modified: &mod,
		Readable: true,
		Path:     path,
	}
}

// tailLines reads the last n lines of the file. Sync logs stay small (one
// line per fetched page or finished run), so reading the whole file is fine.
func tailLines(path string, n int) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := strings.TrimRight(string(raw), "\n")
	if content == "" {
		return "", nil
	}
	all := strings.Split(content, "\n")
	if len(all) <= n {
		return strings.Join(all, "\n"), nil
	}
	return strings.Join(all[len(all)-n:], "\n"), nil
}
