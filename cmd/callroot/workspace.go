package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"callroot/internal/workspace"
)

var (
	wsInitName            string
	wsInitForce           bool
	wsAddIndex            string
	wsAddKind             string
	wsAddLanguage         string
	wsRemoveKeepRedirects bool
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage the projects in the workspace manifest",
	Long: `Manage .callroot/workspace.toml, the list of projects callroot resolves
symbols across. Source projects own the code; metadata projects describe
compiled dependencies whose symbols are redirected to source projects.`,
}

var workspaceInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty workspace manifest",
	Args:  cobra.NoArgs,
	RunE:  runWorkspaceInit,
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add <name> <root>",
	Short: "Add a project to the workspace",
	Long: `Add a project to the workspace. <root> is relative to the workspace root
unless absolute; --index is relative to the project root.

Examples:
  callroot workspace add app ./app
  callroot workspace add lib ../lib --index build/index.scip.zst
  callroot workspace add stdlib-meta ./deps/stdlib --kind metadata`,
	Args: cobra.ExactArgs(2),
	RunE: runWorkspaceAdd,
}

var workspaceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a project and the redirects pointing at it",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceRemove,
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspace projects",
	Args:  cobra.NoArgs,
	RunE:  runWorkspaceList,
}

func init() {
	workspaceInitCmd.Flags().StringVar(&wsInitName, "name", "", "Workspace name (default: root directory name)")
	workspaceInitCmd.Flags().BoolVar(&wsInitForce, "force", false, "Overwrite an existing manifest")

	workspaceAddCmd.Flags().StringVar(&wsAddIndex, "index", "", "SCIP index path (default from config)")
	workspaceAddCmd.Flags().StringVar(&wsAddKind, "kind", string(workspace.KindSource), "Project kind: source or metadata")
	workspaceAddCmd.Flags().StringVar(&wsAddLanguage, "language", "", "Primary language, informational")

	workspaceRemoveCmd.Flags().BoolVar(&wsRemoveKeepRedirects, "keep-redirects", false, "Keep redirects that target the project")

	workspaceCmd.AddCommand(workspaceInitCmd, workspaceAddCmd, workspaceRemoveCmd, workspaceListCmd)
	rootCmd.AddCommand(workspaceCmd)
}

func runWorkspaceInit(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	path := e.manifestPath()
	if _, err := os.Stat(path); err == nil && !wsInitForce {
		return fmt.Errorf("workspace manifest already exists at %s (use --force to overwrite)", path)
	}

	name := wsInitName
	if name == "" {
		name = filepath.Base(e.root)
	}
	if err := workspace.NewManifest(name).Save(path); err != nil {
		return err
	}
	e.logger.Info("Created workspace manifest", "path", path, "name", name)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace %q at %s\n", name, path)
	return nil
}

func runWorkspaceAdd(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	m, err := e.loadManifest()
	if err != nil {
		return err
	}
	pc, err := m.AddProject(args[0], args[1], wsAddIndex, workspace.ProjectKind(wsAddKind), wsAddLanguage)
	if err != nil {
		return err
	}
	if err := m.Save(e.manifestPath()); err != nil {
		return err
	}
	e.logger.Info("Added project", "name", pc.Name, "uid", pc.UID, "kind", string(pc.Kind))
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s project %q (%s)\n", pc.Kind, pc.Name, pc.Root)
	return nil
}

func runWorkspaceRemove(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	name := args[0]
	m, err := e.loadManifest()
	if err != nil {
		return err
	}
	if err := m.RemoveProject(name); err != nil {
		return err
	}
	if err := m.Save(e.manifestPath()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed project %q\n", name)

	if wsRemoveKeepRedirects {
		return nil
	}
	redirects, err := e.openRedirects()
	if err != nil {
		return err
	}
	n, err := redirects.DeleteByTarget(context.Background(), name)
	if err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d redirect(s) targeting %q\n", n, name)
	}
	return nil
}

func runWorkspaceList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := os.Stat(e.manifestPath()); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No workspace found. Run 'callroot workspace init' first.")
		return nil
	}
	ws, err := e.openWorkspace()
	if err != nil {
		return err
	}

	projects := ws.Projects()
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects in workspace.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tLANGUAGE\tROOT\tINDEX\tINDEXED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Kind, orDash(p.Language), p.Root, p.IndexPath, indexState(p.IndexPath))
	}
	return w.Flush()
}

func indexState(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "missing"
	}
	return "yes"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
