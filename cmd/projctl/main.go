// Package main implements projctl, a CLI for a running projectd.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	server  string
	timeout time.Duration
}

func (o *rootOptions) client() *client {
	return newClient(o.server, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "projctl",
		Short: "CLI for projectd registry operations",
		Long: `projctl talks to a running projectd over HTTP.
It opens project links, manages the registry and checks server health.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:9191", "projectd server URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		newOpenCmd(opts),
		newInsertCmd(opts),
		newDeleteCmd(opts),
		newSwitchCmd(opts),
		newListCmd(opts),
		newHealthCmd(opts),
	)
	return root
}

func newOpenCmd(opts *rootOptions) *cobra.Command {
	var (
		action   string
		user     string
		password string
		choice   string
	)
	cmd := &cobra.Command{
		Use:   "open <server-url>",
		Short: "Open a project link",
		Long: `Open a project link the way a scanned invitation would.

When the server already knows the connection, the command asks whether to
switch to the existing project or add a duplicate. Pass --choice to answer
without the prompt.

Examples:
  projctl open https://central.example.com --user alice --password s3cret
  projctl open https://central.example.com --user alice --password s3cret --action delete
  projctl open https://central.example.com --user alice --password s3cret --choice duplicate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			req := connectionRequest{Action: action, ProjectURL: args[0], UserName: user, Password: password}

			out, err := c.Open(cmd.Context(), req)
			if err != nil {
				return err
			}
			if out.Outcome == "choice_required" {
				picked := choice
				if picked == "" {
					picked, err = promptChoice(out.Title, out.Message, out.Choices,
						tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
					if errors.Is(err, errPromptCancelled) {
						fmt.Fprintln(cmd.ErrOrStderr(), "No change made")
						return nil
					}
					if err != nil {
						return err
					}
				}
				req.Choice = picked
				out, err = c.Choose(cmd.Context(), req)
				if err != nil {
					return err
				}
			}
			return printOutcome(cmd, out)
		},
	}
	cmd.Flags().StringVar(&action, "action", "insert", "insert, insert-or-edit or delete")
	cmd.Flags().StringVar(&user, "user", "", "server username")
	cmd.Flags().StringVar(&password, "password", "", "server password")
	cmd.Flags().StringVar(&choice, "choice", "", "answer for a duplicate match: switch or duplicate")
	return cmd
}

func printOutcome(cmd *cobra.Command, out uriResponse) error {
	w := cmd.OutOrStdout()
	switch out.Outcome {
	case "created":
		fmt.Fprintf(w, "Created project %s\n", out.ProjectID)
	case "switched":
		fmt.Fprintf(w, "Switched to project %s\n", out.ProjectID)
	case "deleted":
		fmt.Fprintf(w, "Deleted project %s\n", out.ProjectID)
		if out.NewCurrentID != "" {
			fmt.Fprintf(w, "Current project is now %s\n", out.NewCurrentID)
		}
	case "error":
		return errors.New(out.Message)
	default:
		fmt.Fprintf(w, "%s %s\n", out.Outcome, out.ProjectID)
	}
	return nil
}

func newInsertCmd(opts *rootOptions) *cobra.Command {
	var user, password string
	cmd := &cobra.Command{
		Use:   "insert <server-url>",
		Short: "Add a project without matching existing ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.client().Insert(cmd.Context(), connectionRequest{
				ProjectURL: args[0], UserName: user, Password: password,
			})
			if err != nil {
				return err
			}
			if out.URI == nil {
				return fmt.Errorf("import failed: %s", out.Result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", out.ProjectID, *out.URI)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "server username")
	cmd.Flags().StringVar(&password, "password", "", "server password")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.client().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out.Count == 0 {
				return fmt.Errorf("nothing deleted: %s", out.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s (%s)\n", args[0], out.Message)
			return nil
		},
	}
}

func newSwitchCmd(opts *rootOptions) *cobra.Command {
	var id, serverURL, user string
	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Make a project current",
		Long: `Make a project current, by id or by its server URL and username.

Examples:
  projctl switch --id 0f8c...
  projctl switch --url https://central.example.com --user alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := switchRequest{}
			if id != "" {
				req.ProjectID = &id
			}
			if serverURL != "" {
				req.ProjectURL = &serverURL
			}
			if user != "" {
				req.UserName = &user
			}
			out, err := opts.client().Switch(cmd.Context(), req)
			if err != nil {
				return err
			}
			if out.Count == 0 {
				return errors.New("no matching project")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Switched")
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "project id")
	cmd.Flags().StringVar(&serverURL, "url", "", "server URL")
	cmd.Flags().StringVar(&user, "user", "", "server username")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.client().List(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(out.Projects) == 0 {
				fmt.Fprintln(w, "No projects")
				return nil
			}
			for _, p := range out.Projects {
				marker := " "
				if p.Current {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %s  [%s] %s  %s\n", marker, p.ID, p.Icon, p.Name, p.Color)
			}
			return nil
		},
	}
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check projectd server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Server Status: %s\n", out.Status)
			fmt.Fprintf(w, "Server URL: %s\n", opts.server)
			fmt.Fprintf(w, "Projects: %d\n", out.Projects)
			if out.CurrentProject != "" {
				fmt.Fprintf(w, "Current: %s\n", out.CurrentProject)
			}
			return nil
		},
	}
}
