package observability

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger writes level-tagged key/value lines to stdout. The kv arguments are
// alternating keys and values.
type Logger struct {
	l *log.Logger
}

func NewLogger() *Logger {
	return &Logger{l: log.New(os.Stdout, "", log.LstdFlags|log.LUTC)}
}

func (lg *Logger) Info(msg string, kv ...any) {
	lg.l.Println("INFO", msg, formatKV(kv))
}

func (lg *Logger) Error(msg string, kv ...any) {
	lg.l.Println("ERROR", msg, formatKV(kv))
}

func formatKV(kv []any) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 != 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=", kv[len(kv)-1])
	}
	return b.String()
}
