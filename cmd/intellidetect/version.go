package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intellidetect/dashboard/internal/release"
)

// releaseURL is swapped in tests.
var releaseURL = release.LatestURL

type versionInfo struct {
	Version   string `json:"version"`
	Latest    string `json:"latest,omitempty"`
	HasUpdate bool   `json:"hasUpdate"`
}

func newVersionCmd(c *cli) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{Version: version}
			if check {
				if !release.Checkable(version) {
					return fmt.Errorf("development build %q cannot be compared to releases", version)
				}
				latest, err := release.Latest(cmd.Context(), releaseURL)
				if err != nil {
					return err
				}
				info.Latest = latest
				info.HasUpdate = release.IsNewer(latest, version)
			}
			return c.emit(cmd.OutOrStdout(), info, func() string { return formatVersionHuman(info) })
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "compare against the latest release")
	return cmd
}

func formatVersionHuman(info versionInfo) string {
	s := "intellidetect " + info.Version + "\n"
	switch {
	case info.HasUpdate:
		s += warnStyle.Render("v"+info.Latest+" is available") + "\n"
	case info.Latest != "":
		s += labelStyle.Render("up to date") + "\n"
	}
	return s
}
