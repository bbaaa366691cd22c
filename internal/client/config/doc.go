// Package config loads runtime configuration for the demochat client and
// gateway.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables, after loading an optional .env file from the
//     working directory. Variables already set in the process win over .env.
//  4. Command-line flags, which override everything before them.
//
// Empty API and cable URLs are resolved last: the API URL depends on
// NODE_ENV, the cable URL is derived from the API URL.
//
// # Environment
//
//	API_URL, CABLE_URL, CHANNEL, NODE_ENV, ENCRYPTION_KEY (or the legacy
//	NUXT_ENV_ENCRYPTION_KEY), ENCRYPTION_SCHEME, LOG_LEVEL, LOG_BACKEND,
//	SESSION_STORAGE, SESSION_STORAGE_PATH, REQUEST_TIMEOUT,
//	RECONNECT_MAX_ATTEMPTS, RECONNECT_BASE_DELAY, RECONNECT_MAX_DELAY,
//	LISTEN_ADDR, BASIC_AUTH_USERNAME, BASIC_AUTH_PASSWORD
//
// # JSON schema
//
//	{
//	  "api_url": "http://localhost:3000",
//	  "channel": "RoomChannel",
//	  "node_env": "development",
//	  "reconnect_base_delay": "1s"
//	}
package config
