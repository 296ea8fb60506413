package utils

import (
	"github.com/sirupsen/logrus"

	"polycopy/utils/config"
	"polycopy/utils/log"
)

var Log *logrus.Logger

func init() {
	config.LoadConf()
	Log = log.InitLogger()
}
