// Package config handles loading and validating simdash configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The simulator endpoints fall back to the public demo backend when neither
// the file nor SIMDASH_API_URL / SIMDASH_WS_URL provide one, so simdash runs
// with no config file at all.
//
// Security Considerations:
//   - MQTT credentials should be set via environment variables
//
// Usage:
//
//	cfg, err := config.Load("configs/simdash.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Simulator.APIURL)
package config
