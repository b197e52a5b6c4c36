// Package cli parses the command line of the isbnmap server into a
// config.Config. Flags override the values of the configuration file.
package cli
