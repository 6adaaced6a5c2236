package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARN",
	ERROR:   "ERROR",
	FATAL:   "FATAL",
}

type Logger struct {
	level  LogLevel
	prefix string
	out    io.Writer
	file   *os.File
}

var defaultLogger = &Logger{
	level:  INFO,
	prefix: "XVP",
}

func SetLogLevel(level LogLevel) {
	defaultLogger.level = level
}

func SetLogFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defaultLogger.file = file
	log.SetOutput(file)
	return nil
}

// SetLogOutput 重定向日志输出（测试用）
func SetLogOutput(w io.Writer) {
	defaultLogger.out = w
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.prefix, levelNames[level], message)

	switch {
	case l.out != nil:
		fmt.Fprintln(l.out, line)
	case l.file != nil:
		fmt.Fprintln(l.file, line)
	case level >= ERROR:
		fmt.Fprintln(os.Stderr, line)
	default:
		fmt.Println(line)
	}

	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(format string, args ...interface{}) {
	defaultLogger.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	defaultLogger.log(INFO, format, args...)
}

func Warning(format string, args ...interface{}) {
	defaultLogger.log(WARNING, format, args...)
}

func Error(format string, args ...interface{}) {
	defaultLogger.log(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.log(FATAL, format, args...)
}
