package main

import (
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

// parseEnv sets every flag not given on the command line from
// <prefix><FLAG_NAME> when that variable is non-empty.
func parseEnv(fs *flag.FlagSet, prefix string) {
	nonset := make(map[string]*flag.Flag)
	fs.VisitAll(func(f *flag.Flag) { nonset[f.Name] = f })
	fs.Visit(func(f *flag.Flag) { delete(nonset, f.Name) })

	for name, f := range nonset {
		if v := os.Getenv(envName(name, prefix)); v != "" {
			if err := f.Value.Set(v); err == nil {
				f.Changed = true
			}
		}
	}
}

func envName(flagName, prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
