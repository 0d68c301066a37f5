// Package rlog is a small structured-logging adapter used throughout rcache,
// with the call convention log.Debug("message", "key", value, "key2", value2)
// layered over github.com/sirupsen/logrus.
package rlog

import "github.com/sirupsen/logrus"

var std = logrus.New()

// SetLevel adjusts verbosity; logrus defaults (stderr, text formatter, Info
// level) apply otherwise.
func SetLevel(level logrus.Level) { std.SetLevel(level) }

func fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

func Debug(msg string, kv ...interface{}) { std.WithFields(fields(kv)).Debug(msg) }
func Info(msg string, kv ...interface{})  { std.WithFields(fields(kv)).Info(msg) }
func Warn(msg string, kv ...interface{})  { std.WithFields(fields(kv)).Warn(msg) }
func Error(msg string, kv ...interface{}) { std.WithFields(fields(kv)).Error(msg) }

