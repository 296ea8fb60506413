package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var configPath = "./configs/"
var envConfigPath = "./.env"

func LoadConf() {
	if err := mergeConfigFiles(); err != nil {
		log.Fatalln("failed to load config files:", err.Error())
	}
	if err := mergeEnvConfig(); err != nil {
		log.Fatalln("failed to load environment config:", err.Error())
	}
}

// mergeConfigFiles merges every file under ./configs/ into viper.
func mergeConfigFiles() error {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil
	}
	exist, _ := pathExists(absPath)
	if !exist {
		return nil
	}

	entries, err := os.ReadDir(absPath)
	if err != nil {
		return err
	}
	for i := range entries {
		viper.SetConfigFile(absPath + "/" + entries[i].Name())
		if err := viper.MergeInConfig(); err != nil {
			return err
		}
	}

	return nil
}

// mergeEnvConfig loads process environment variables plus an optional .env
// file, mapping FOO_BAR to foo.bar keys.
func mergeEnvConfig() error {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envViper := viper.New()
	absPath, err := filepath.Abs(envConfigPath)
	if err != nil {
		return nil
	}
	exist, _ := pathExists(absPath)
	if exist {
		envViper.SetConfigFile(absPath)
		if err := envViper.ReadInConfig(); err != nil {
			return err
		}
	}

	for _, key := range envViper.AllKeys() {
		viper.Set(strings.Replace(key, "_", ".", 1), envViper.Get(key))
	}

	return nil
}

// WatchConf reloads config files on change.
func WatchConf() {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		logrus.Printf("config file updated: %s\n", e.Name)
	})
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
