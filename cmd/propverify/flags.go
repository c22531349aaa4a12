package main

import "github.com/spf13/pflag"

// overrideString replaces *dst with the flag value when the flag was set
// explicitly on the command line.
func overrideString(flags *pflag.FlagSet, name string, dst *string) {
	if !flags.Changed(name) {
		return
	}
	if v, err := flags.GetString(name); err == nil {
		*dst = v
	}
}
