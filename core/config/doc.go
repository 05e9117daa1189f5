// Package config loads environment variables into typed structs with caching.
// Each configuration type is parsed once and cached for subsequent calls.
//
// A .env file is loaded on first use and the caarlos0/env library parses
// variables into struct fields:
//
//	type ServerConfig struct {
//		Addr  string `env:"ADDR" envDefault:":8080"`
//		Debug bool   `env:"DEBUG"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	// Or panic on failure during startup
//	config.MustLoad(&cfg)
//
// The dispatcher configuration is loaded the same way:
//
//	var rc router.Config
//	config.MustLoad(&rc)
//	d := router.New(table, router.WithConfig(rc))
//
// Parse fills a struct from an explicit map and never touches the cache.
package config
