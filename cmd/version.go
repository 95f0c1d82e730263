package cmd

import (
	"fmt"
	rdebug "runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// version is set at link time with
// -ldflags "-X github.com/cwarden/skuld/cmd.version=v1.2.3".
var version string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := rdebug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionLine(version, info))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionLine renders "skuld <version> (<module>, <go>[, <revision>])".
// A linked-in version wins over the module version; builds from a working
// tree report "(devel)".
func versionLine(linked string, info *rdebug.BuildInfo) string {
	v := linked
	module, goVersion := "github.com/cwarden/skuld", "unknown"
	var details []string

	if info != nil {
		if info.Main.Path != "" {
			module = info.Main.Path
		}
		if v == "" {
			v = info.Main.Version
		}
		goVersion = info.GoVersion
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				details = append(details, s.Value[:12])
			}
			if s.Key == "vcs.modified" && s.Value == "true" {
				details = append(details, "dirty")
			}
		}
	}
	if v == "" {
		v = "(devel)"
	}

	parts := append([]string{module, goVersion}, details...)
	return fmt.Sprintf("skuld %s (%s)", v, strings.Join(parts, ", "))
}
