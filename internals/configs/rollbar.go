package configs

import (
	"errors"

	"github.com/rollbar/rollbar-go"
	rollbarErrors "github.com/rollbar/rollbar-go/errors"
	"github.com/sirupsen/logrus"
)

// rollbarHook meneruskan entry level error ke atas ke Rollbar.
type rollbarHook struct{}

func NewRollbarHook(token, env string) logrus.Hook {
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetServerHost(GetEnv("APP_NAME"))
	rollbar.SetStackTracer(rollbarErrors.StackTracer)
	return rollbarHook{}
}

func (rollbarHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}

func (rollbarHook) Fire(entry *logrus.Entry) error {
	extras := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		extras[k] = v
	}
	err := errors.New(entry.Message)
	if e, ok := entry.Data[logrus.ErrorKey].(error); ok {
		err = e
	}
	switch entry.Level {
	case logrus.ErrorLevel:
		rollbar.Error(err, extras)
	default:
		rollbar.Critical(err, extras)
	}
	return nil
}
