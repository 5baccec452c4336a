package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time, e.g.
//
//	-X github.com/abhisek/earlyedge/cmd.version=v1.2.0
//	-X github.com/abhisek/earlyedge/cmd.commit=$(git rev-parse --short HEAD)
//	-X github.com/abhisek/earlyedge/cmd.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)
var (
	version = "(devel)"
	commit  = ""
	date    = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

// versionString reports the version plus commit and build date when
// known. Without ldflags the commit falls back to the VCS stamp Go
// embeds in module builds.
func versionString() string {
	c, d := commit, date
	if c == "" {
		c, d = vcsStamp(d)
	}
	var details []string
	if c != "" {
		details = append(details, "commit "+c)
	}
	if d != "" {
		details = append(details, "built "+d)
	}
	s := "earlyedge " + version
	if len(details) > 0 {
		s += " (" + strings.Join(details, ", ") + ")"
	}
	return s
}

func vcsStamp(built string) (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", built
	}
	var rev string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
			if len(rev) > 7 {
				rev = rev[:7]
			}
		case "vcs.time":
			if built == "" {
				built = s.Value
			}
		}
	}
	return rev, built
}
