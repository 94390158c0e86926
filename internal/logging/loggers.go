// Package logging holds the logger shared by the command line tools.
package logging

import (
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger.  Library packages never log; only the
// commands and long-running helpers they drive do.
var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.Out = os.Stderr
	Logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	Logger.Level = logrus.InfoLevel
}

// SetLevel parses and applies a level name such as "debug" or "warn".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetFileRotationHooker additionally writes every entry to daily rotated
// files under path, keeping at most count of them.
func SetFileRotationHooker(path string, count uint) error {
	hook, err := newFileRotateHooker(path, count)
	if err != nil {
		return err
	}
	Logger.Hooks.Add(hook)
	return nil
}

func newFileRotateHooker(path string, count uint) (logrus.Hook, error) {
	if len(path) == 0 {
		return nil, errors.New("empty logger folder")
	}
	if !filepath.IsAbs(path) {
		path, _ = filepath.Abs(path)
	}
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, errors.Wrapf(err, "failed to create logger folder %s", path)
	}

	filePath := filepath.Join(path, "pkcdemo-%Y%m%d-%H.log")
	linkPath := filepath.Join(path, "pkcdemo.log")
	writer, err := rotatelogs.New(
		filePath,
		rotatelogs.WithLinkName(linkPath),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithRotationCount(count),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rotate logs")
	}

	hook := lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
	}, nil)
	return hook, nil
}
