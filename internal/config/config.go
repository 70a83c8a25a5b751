// Package config reads the service configuration from command line flags, environment variables
// and .env files.
package config

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configuration keys; the environment variable is the upper case key with '-' replaced by '_'
const (
	KeyDBHost     = "dbhost"
	KeyDBUser     = "dbuser"
	KeyDBPassword = "dbpwd"
	KeyDBName     = "dbname"
	KeyPort       = "port"
	KeyGinLogging = "gin-logging"
	KeyLogLevel   = "log-level"
)

// Config holds all settings of the people service.
type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	Port       int

	// RequestLogging turns the per-request log lines on or off.
	RequestLogging bool
	LogLevel       string
}

// RegisterFlags adds the configuration flags with their defaults to a flag set.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(KeyDBHost, "localhost:3306", "host and port of the MySQL server")
	flags.String(KeyDBUser, "", "database user")
	flags.String(KeyDBPassword, "", "database password")
	flags.String(KeyDBName, "test", "database name")
	flags.Int(KeyPort, 8080, "port on which the HTTP API listens")
	flags.String(KeyGinLogging, "on", "set to 'off' to disable HTTP request logging")
	flags.String(KeyLogLevel, "info", "log level (debug, info, warn, error)")
}

// Load reads the configuration. Flags that were set explicitly take precedence over environment
// variables, which take precedence over the flag defaults. Values from .env and .env.local are
// exported to the environment first, without overriding variables that are already set.
func Load(flags *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, err
	}

	conf := Config{
		DBHost:         v.GetString(KeyDBHost),
		DBUser:         v.GetString(KeyDBUser),
		DBPassword:     v.GetString(KeyDBPassword),
		DBName:         v.GetString(KeyDBName),
		Port:           v.GetInt(KeyPort),
		RequestLogging: !strings.EqualFold(v.GetString(KeyGinLogging), "off"),
		LogLevel:       v.GetString(KeyLogLevel),
	}
	if conf.Port < 1 || conf.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", conf.Port)
	}
	return conf, nil
}

// DSN returns the data source name for the MySQL driver.
func (c Config) DSN() string {
	mysqlConf := mysql.NewConfig()
	mysqlConf.User = c.DBUser
	mysqlConf.Passwd = c.DBPassword
	mysqlConf.Net = "tcp"
	mysqlConf.Addr = c.DBHost
	mysqlConf.DBName = c.DBName
	mysqlConf.ParseTime = true
	return mysqlConf.FormatDSN()
}

// Addr returns the listen address of the HTTP API.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
