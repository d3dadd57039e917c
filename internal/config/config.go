// Package config holds the explicit configuration value threaded
// through the server and parsers that enforce limits. The embedding
// application is responsible for populating it; nothing in this
// module reads environment variables or files.
package config

import "github.com/sirupsen/logrus"

// Config is the explicit, caller-populated set of server limits and
// settings.
type Config struct {
	NonSSLServerPort int
	SSLServerPort    int
	Hostname         string
	DBDir            string

	MaxQueryStringKeysCount int
	MaxHeaders              int
	MaxHeaderBytes          int
	MaxLineBytes            int
	MaxBodyBytes            int

	KeepAliveTimeoutSeconds int

	LogLevel logrus.Level
}

// Default returns sane limits for development and for tests that do
// not care about the exact caps.
func Default() Config {
	return Config{
		NonSSLServerPort:        8080,
		SSLServerPort:           8443,
		Hostname:                "localhost",
		DBDir:                   "",
		MaxQueryStringKeysCount: 50,
		MaxHeaders:              100,
		MaxHeaderBytes:          64 * 1024,
		MaxLineBytes:            8 * 1024,
		MaxBodyBytes:            10 * 1024 * 1024,
		KeepAliveTimeoutSeconds: 3,
		LogLevel:                logrus.InfoLevel,
	}
}
