package klog

import (
	"fmt"
	golog "log"
	"runtime"
	"strconv"
	"strings"
)

type kernlogger struct {
	out     *golog.Logger
	level   Level
	color   bool
	filters []string
}

func (l *kernlogger) prologue(level Level) string {
	msg := level.String() + " "

	_, file, line, ok := runtime.Caller(3)
	if ok {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		msg += short + ":" + strconv.Itoa(line) + ": "
	}

	if l.color {
		msg = fgYellow + msg + levelColor(level)
	}
	return msg
}

func (l *kernlogger) epilogue() string {
	if l.color {
		return reset
	}
	return ""
}

func (l *kernlogger) dropped(msg string) bool {
	for _, f := range l.filters {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}

func (l *kernlogger) log(level Level, format string, args ...interface{}) {
	msg := l.prologue(level) + fmt.Sprintf(format, args...) + l.epilogue()
	if l.dropped(msg) {
		return
	}
	l.out.Println(msg)
}
