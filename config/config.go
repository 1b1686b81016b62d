// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"strings"

	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/where"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.Arflix)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Arflix)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// Watch invokes onChange each time the config file is rewritten while the process runs.
// It reports false when no config file was loaded and there is nothing to watch.
func Watch(onChange func()) bool {
	if viper.ConfigFileUsed() == "" {
		return false
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		log.Infof("config file changed: %s", e.Name)
		onChange()
	})
	viper.WatchConfig()
	return true
}

// Keys returns every registered key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(Default))
	for k := range Default {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
