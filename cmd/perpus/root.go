package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/and161185/perpus/internal/config"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "perpus",
		Short:         "Library catalog client",
		Long:          "perpus browses the library catalog, borrows and returns books, and rates returned titles.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	fs := root.PersistentFlags()
	fs.StringVarP(&a.configFile, "config", "c", "", "Path to config file (default $XDG_CONFIG_HOME/perpus/config.yaml)")
	config.NewOptions().AddFlags(fs)

	root.AddCommand(
		newVersionCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newBooksCmd(a),
		newLoansCmd(a),
		newRatingsCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipInit: "true"},
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "perpus %s (%s)\n", version, buildDate)
		},
	}
}
