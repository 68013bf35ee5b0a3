// Package config loads, normalizes, and validates vast configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VAST_LMS_TOKEN. The Config value is passed explicitly into every component
// constructor; nothing in the module reads preferences from a global.
package config
