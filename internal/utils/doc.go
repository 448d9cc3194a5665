// Package utils holds the process-wide plumbing shared by every reauthor
// command: the zap LoggerFactory and the viper-backed ConfigurationLoader that
// layers embedded defaults, an optional configuration file and REAUTHOR_*
// environment variables.
package utils
