package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	cerrors "callroot/internal/errors"
	"callroot/internal/storage"
	"callroot/internal/workspace"
)

var (
	redirectFromProject string
	redirectToProject   string
	redirectReason      string
)

var redirectCmd = &cobra.Command{
	Use:   "redirect",
	Short: "Manage explicit metadata-to-source symbol redirects",
	Long: `Redirects pin a symbol seen in a metadata project to a symbol in a source
project. They take precedence over automatic matching by symbol identity.
A redirect stored for project "*" applies to every metadata project.`,
}

var redirectAddCmd = &cobra.Command{
	Use:   "add <from-symbol> <to-symbol>",
	Short: "Store a redirect",
	Long: `Store a redirect from <from-symbol> to <to-symbol> in --to-project.

Examples:
  callroot redirect add 'scip-go gomod lib v1.2.0 ` + "`lib`" + `/Greet().' \
    'scip-go gomod lib v1.3.0-dev ` + "`lib`" + `/Greet().' --to-project lib`,
	Args: cobra.ExactArgs(2),
	RunE: runRedirectAdd,
}

var redirectRemoveCmd = &cobra.Command{
	Use:   "remove <from-symbol>",
	Short: "Delete a redirect",
	Args:  cobra.ExactArgs(1),
	RunE:  runRedirectRemove,
}

var redirectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored redirects",
	Args:  cobra.NoArgs,
	RunE:  runRedirectList,
}

func init() {
	redirectAddCmd.Flags().StringVar(&redirectFromProject, "from-project", storage.AnyProject, "Metadata project the symbol is seen in (* for any)")
	redirectAddCmd.Flags().StringVar(&redirectToProject, "to-project", "", "Source project that defines the target symbol")
	redirectAddCmd.Flags().StringVar(&redirectReason, "reason", "", "Free-form note stored with the redirect")
	_ = redirectAddCmd.MarkFlagRequired("to-project")

	redirectRemoveCmd.Flags().StringVar(&redirectFromProject, "from-project", storage.AnyProject, "Metadata project of the redirect (* for any)")

	redirectCmd.AddCommand(redirectAddCmd, redirectRemoveCmd, redirectListCmd)
	rootCmd.AddCommand(redirectCmd)
}

// checkRedirectProjects verifies the redirect endpoints against the manifest
func checkRedirectProjects(m *workspace.Manifest, from, to string) error {
	target := m.GetProject(to)
	if target == nil {
		return cerrors.Newf(cerrors.ProjectNotFound, "target project %q is not in the workspace", to)
	}
	if target.Kind != workspace.KindSource {
		return cerrors.Newf(cerrors.WorkspaceInvalid, "target project %q is not a source project", to)
	}
	if from == storage.AnyProject {
		return nil
	}
	origin := m.GetProject(from)
	if origin == nil {
		return cerrors.Newf(cerrors.ProjectNotFound, "project %q is not in the workspace", from)
	}
	if origin.Kind != workspace.KindMetadata {
		return cerrors.Newf(cerrors.WorkspaceInvalid, "redirects only apply to metadata projects; %q is %s", from, origin.Kind)
	}
	return nil
}

func runRedirectAdd(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	m, err := e.loadManifest()
	if err != nil {
		return err
	}
	if err := checkRedirectProjects(m, redirectFromProject, redirectToProject); err != nil {
		return err
	}

	redirects, err := e.openRedirects()
	if err != nil {
		return err
	}
	r := &storage.Redirect{
		FromSymbol:  args[0],
		FromProject: redirectFromProject,
		ToSymbol:    args[1],
		ToProject:   redirectToProject,
		Reason:      redirectReason,
	}
	if err := redirects.Put(context.Background(), r); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Redirect stored: [%s] %s -> [%s] %s\n",
		r.FromProject, r.FromSymbol, r.ToProject, r.ToSymbol)
	return nil
}

func runRedirectRemove(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	redirects, err := e.openRedirects()
	if err != nil {
		return err
	}
	deleted, err := redirects.Delete(context.Background(), args[0], redirectFromProject)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no redirect for %s in project %q", args[0], redirectFromProject)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Redirect removed")
	return nil
}

func runRedirectList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	redirects, err := e.openRedirects()
	if err != nil {
		return err
	}
	all, err := redirects.List(context.Background())
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No redirects stored.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FROM PROJECT\tFROM SYMBOL\tTO PROJECT\tTO SYMBOL\tREASON")
	for _, r := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.FromProject, r.FromSymbol, r.ToProject, r.ToSymbol, orDash(r.Reason))
	}
	return w.Flush()
}
