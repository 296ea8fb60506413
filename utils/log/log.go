package log

import (
	"os"
	"path"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func InitLogger() *logrus.Logger {
	var loglevel logrus.Level

	logLevel := viper.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}

	Log := logrus.New()
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	Log.Out = os.Stdout

	err := loglevel.UnmarshalText([]byte(logLevel))
	if err != nil {
		Log.Panicf("unknown log level: %v", err)
	}
	Log.SetLevel(loglevel)

	if viper.GetBool("log.file") {
		dataPath := viper.GetString("log.path")
		if _, err := os.Stat(dataPath); err != nil {
			if err = os.MkdirAll(dataPath, os.ModePerm); err != nil {
				Log.Panicf("mkdir error: %s", err.Error())
			}
		}
		NewSimpleLogger(Log, dataPath, 30)
	}
	return Log
}

// NewSimpleLogger attaches per-level rotating file writers to the logger.
func NewSimpleLogger(log *logrus.Logger, logPath string, save uint) {
	lfHook := lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: writer(logPath, "debug", save),
		logrus.TraceLevel: writer(logPath, "trace", save),
		logrus.InfoLevel:  writer(logPath, "info", save),
		logrus.WarnLevel:  writer(logPath, "warn", save),
		logrus.ErrorLevel: writer(logPath, "error", save),
		logrus.FatalLevel: writer(logPath, "fatal", save),
		logrus.PanicLevel: writer(logPath, "panic", save),
	}, &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.AddHook(lfHook)
}

func writer(logPath string, level string, save uint) *rotatelogs.RotateLogs {
	fileFlag := level
	if flag := viper.GetString("log.flag"); flag != "" {
		fileFlag = flag + "-" + level
	}

	logFullPath := path.Join(logPath, fileFlag)

	logier, err := rotatelogs.New(
		logFullPath+"-%Y%m%d.log",
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(-1),
		rotatelogs.WithLinkName(logFullPath+".out"),
		rotatelogs.WithRotationCount(int(save)),
	)
	if err != nil {
		panic(err)
	}
	return logier
}
