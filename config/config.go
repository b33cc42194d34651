// config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Paths         PathsConfiguration
	Rcon          RconConfiguration
	Mojang        MojangConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
}

// ServerConfiguration stores the port and other ops API settings
type ServerConfiguration struct {
	Port string
}

// PathsConfiguration stores filesystem locations
type PathsConfiguration struct {
	Database string
	LogDir   string
}

// RconConfiguration stores data for the Minecraft RCON connection
type RconConfiguration struct {
	Address string
}

// MojangConfiguration stores settings for the username lookup API
type MojangConfiguration struct {
	BaseURL string
	Timeout string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Enabled         bool
	Addr            string
	DefaultCacheTTL string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	Enabled bool
	URL     string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath(".")      // working directory, where the unit file puts config.yaml
	viper.AddConfigPath("config") // fallback for local runs
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv() // read in environment variables that match

	// Secrets only ever come from the environment
	viper.BindEnv("discord.token", "WALTER_DISCORD_KEY")
	viper.BindEnv("discord.guildID", "WALTER_GUILD_ID")
	viper.BindEnv("rcon.secret", "WALTER_RCON_SECRET")
	viper.BindEnv("auth.jwtSecret", "WALTER_JWT_SECRET")

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("paths.database", "walter.db")
	viper.SetDefault("paths.logDir", "logging")
	viper.SetDefault("rcon.address", "127.0.0.1:25575")
	viper.SetDefault("mojang.baseURL", "https://api.mojang.com")
	viper.SetDefault("mojang.timeout", "5s")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.defaultCacheTTL", "10m")
	viper.SetDefault("elasticsearch.enabled", false)
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
