package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shaun/contentsync/internal/githubfake"
	"github.com/shaun/contentsync/internal/logging"
)

type fakeGitHubOptions struct {
	addr  string
	token string
}

var fakeGitHubOpts fakeGitHubOptions

var fakeGitHubCmd = &cobra.Command{
	Use:   "fake-github",
	Short: "Serve an in-memory GitHub Contents API for local development",
	Long: `Serve an in-memory stand-in for the GitHub Contents API. Point
GITHUB_API_URL at it to run the sync endpoint without touching GitHub.
State is lost on exit.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logging.New()
		srv := githubfake.NewServer(githubfake.NewStore(), fakeGitHubOpts.token, log)
		return listen(cmd.Context(), fakeGitHubOpts.addr, srv, log)
	},
}

func init() {
	fakeGitHubCmd.Flags().StringVar(&fakeGitHubOpts.addr, "addr", ":9090", "listen address")
	fakeGitHubCmd.Flags().StringVar(&fakeGitHubOpts.token, "token", "", "require this token on every request")
}
