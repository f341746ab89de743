// Package config loads the factorstd configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FACTORSTD_<SECTION>_<KEY>:
//
//	FACTORSTD_STANDARDIZE_METHOD=CSRankNorm
//	FACTORSTD_STANDARDIZE_COLUMNS=momentum,value,size
//	FACTORSTD_LOGGING_LEVEL=debug
//	FACTORSTD_SERVER_PORT=9090
//
// FACTORSTD_CONFIG names the YAML file; without it ./factorstd.yaml is used
// when present.
//
// # File Format
//
//	standardize:
//	  method: RobustZScoreNorm
//	  columns_file: factors.txt
//	  workers: 4
//	logging:
//	  level: info
//	  output: both
//	  file_path: logs/factorstd.log
//	server:
//	  port: 8080
//	  rate_limit:
//	    enabled: true
//	    rps: 20
//	    burst: 40
package config
