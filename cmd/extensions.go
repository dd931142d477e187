package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kernel/extkill/internal/backup"
	"github.com/kernel/extkill/internal/config"
	"github.com/kernel/extkill/internal/firefox"
	"github.com/kernel/extkill/pkg/util"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// ExtensionService is the subset of the discovery engine the commands use.
type ExtensionService interface {
	Catalog() *firefox.Catalog
	Remove(name string) (bool, error)
	Reload() error
}

// BackupService saves an extension before it is removed.
type BackupService interface {
	Save(ext firefox.Extension) (*backup.Result, error)
}

// ExtensionsCmd handles extension listing and removal.
type ExtensionsCmd struct {
	extensions ExtensionService
	backups    BackupService
	reveal     func(path string) error
	confirm    func(msg string) bool
}

// ListExtensionsInput holds input for listing extensions.
type ListExtensionsInput struct {
	Kind   string
	Output string
}

// List prints the catalog.
func (c ExtensionsCmd) List(in ListExtensionsInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	exts := c.extensions.Catalog().Extensions()
	if in.Kind != "" {
		kind, err := firefox.ParseKind(in.Kind)
		if err != nil {
			return err
		}
		exts = lo.Filter(exts, func(ext firefox.Extension, _ int) bool {
			return ext.Kind == kind
		})
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(exts)
	}

	if len(exts) == 0 {
		pterm.Info.Println("No extensions found")
		return nil
	}

	rows := pterm.TableData{{"Name", "Kind", "Source", "Location"}}
	for _, ext := range exts {
		rows = append(rows, []string{ext.Name, ext.Kind.String(), ext.Source.String(), ext.Locator})
	}
	PrintTableNoPad(rows, true)
	pterm.Info.Println(util.Count(len(exts), "extension"))
	return nil
}

// ShowExtensionInput holds input for showing one extension.
type ShowExtensionInput struct {
	Name   string
	Reveal bool
	Output string
}

// Show prints one extension and optionally opens its location.
func (c ExtensionsCmd) Show(in ShowExtensionInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	ext, ok := c.extensions.Catalog().Get(in.Name)
	if !ok {
		return fmt.Errorf("%w: %s", firefox.ErrExtensionNotFound, in.Name)
	}

	if in.Output == "json" {
		if err := util.PrintPrettyJSON(ext); err != nil {
			return err
		}
	} else {
		rows := pterm.TableData{{"Property", "Value"}}
		rows = append(rows, []string{"Name", ext.Name})
		rows = append(rows, []string{"Kind", ext.Kind.String()})
		rows = append(rows, []string{"Source", ext.Source.String()})
		rows = append(rows, []string{"Location", util.OrDash(ext.Locator)})
		PrintTableNoPad(rows, true)
	}

	if !in.Reveal {
		return nil
	}
	target, err := revealTarget(ext)
	if err != nil {
		return err
	}
	pterm.Info.Printf("Opening %s\n", target)
	if err := c.reveal(target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

// revealTarget is the folder a file manager should open for ext.
func revealTarget(ext firefox.Extension) (string, error) {
	switch ext.Kind {
	case firefox.KindDirectory:
		return ext.Locator, nil
	case firefox.KindArchive:
		return filepath.Dir(ext.Locator), nil
	case firefox.KindRegistry:
		return "", fmt.Errorf("registry extension %s has no location to reveal", ext.Name)
	}
	return "", fmt.Errorf("%w: %s", firefox.ErrUnknownKind, ext.Kind)
}

// RemoveExtensionsInput holds input for removing extensions.
type RemoveExtensionsInput struct {
	Names       []string
	SkipConfirm bool
	BackupDir   string
}

// Remove deletes each named extension and then rescans.
func (c ExtensionsCmd) Remove(in RemoveExtensionsInput) error {
	names := lo.Uniq(in.Names)

	catalog := c.extensions.Catalog()
	if missing := lo.Reject(names, func(name string, _ int) bool { return catalog.Has(name) }); len(missing) > 0 {
		return fmt.Errorf("%w: %s", firefox.ErrExtensionNotFound, missing[0])
	}

	if !in.SkipConfirm {
		msg := fmt.Sprintf("Are you sure you want to delete %s?", util.Count(len(names), "extension"))
		if len(names) == 1 {
			msg = fmt.Sprintf("Are you sure you want to delete extension '%s'?", names[0])
		}
		if !c.confirm(msg) {
			pterm.Info.Println("Deletion cancelled")
			return nil
		}
	}

	var failed int
	for _, name := range names {
		ext, _ := catalog.Get(name)

		if in.BackupDir != "" {
			res, err := c.backups.Save(ext)
			if err != nil {
				pterm.Error.Printf("Failed to back up extension %s: %v\n", name, err)
				failed++
				continue
			}
			pterm.Info.Printf("Saved %s to %s (%s)\n", name, res.Path, util.FormatBytes(res.Bytes))
		}

		ok, err := c.extensions.Remove(name)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
		if !ok {
			pterm.Error.Printf("Failed to delete extension: %s\n", name)
			failed++
			continue
		}
		pterm.Success.Printf("Deleted extension: %s\n", name)
	}

	if err := c.extensions.Reload(); err != nil {
		return fmt.Errorf("failed to rescan extensions: %w", err)
	}
	pterm.Info.Printf("%s remaining\n", util.Count(c.extensions.Catalog().Len(), "extension"))

	if failed > 0 {
		return fmt.Errorf("%d of %s could not be deleted", failed, util.Count(len(names), "extension"))
	}
	return nil
}

// --- Cobra wiring ---

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed extensions",
	Long:    "Scan every extension location and list what was found",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var showCmd = &cobra.Command{
	Use:               "show <name>",
	Short:             "Show extension details",
	Long:              "Show where an extension is installed, optionally opening its folder",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeExtensionNames,
	RunE:              runShow,
}

var removeCmd = &cobra.Command{
	Use:               "remove <name>...",
	Aliases:           []string{"rm", "delete"},
	Short:             "Remove extensions",
	Long:              "Delete the named extensions from disk or from the registry",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeExtensionNames,
	RunE:              runRemove,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(removeCmd)

	listCmd.Flags().String("kind", "", "Only list extensions of this kind (dir, xpi, registry)")
	listCmd.Flags().StringP("output", "o", "", "Output format (json)")

	showCmd.Flags().Bool("reveal", false, "Open the extension's folder in the file manager")
	showCmd.Flags().StringP("output", "o", "", "Output format (json)")

	removeCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	removeCmd.Flags().String("backup-dir", "", "Save a copy of each extension here before removing it")
	removeCmd.Flags().StringSlice("backup-exclude", nil, "File name patterns to leave out of folder backups (e.g. *.log)")
	removeCmd.Flags().StringSlice("backup-exclude-dir", nil, "Directory names to leave out of folder backups (e.g. cache)")
	if err := cfg.BindFlag(removeCmd, config.KeyBackupDir, "backup-dir"); err != nil {
		panic(fmt.Sprintf("failed to bind backup-dir flag: %v", err))
	}
}

func newExtensionsCmd() (ExtensionsCmd, error) {
	engine, err := newEngine()
	if err != nil {
		return ExtensionsCmd{}, err
	}
	return ExtensionsCmd{
		extensions: engine,
		reveal:     browser.OpenFile,
		confirm:    confirmPrompt,
	}, nil
}

func confirmPrompt(msg string) bool {
	pterm.DefaultInteractiveConfirm.DefaultText = msg
	ok, _ := pterm.DefaultInteractiveConfirm.Show()
	return ok
}

func runList(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	output, _ := cmd.Flags().GetString("output")

	c, err := newExtensionsCmd()
	if err != nil {
		return err
	}
	return c.List(ListExtensionsInput{Kind: kind, Output: output})
}

func runShow(cmd *cobra.Command, args []string) error {
	reveal, _ := cmd.Flags().GetBool("reveal")
	output, _ := cmd.Flags().GetString("output")

	c, err := newExtensionsCmd()
	if err != nil {
		return err
	}
	return c.Show(ShowExtensionInput{Name: args[0], Reveal: reveal, Output: output})
}

func runRemove(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	excludeFiles, _ := cmd.Flags().GetStringSlice("backup-exclude")
	excludeDirs, _ := cmd.Flags().GetStringSlice("backup-exclude-dir")

	c, err := newExtensionsCmd()
	if err != nil {
		return err
	}

	backupDir := cfg.BackupDir()
	if backupDir != "" {
		w := backup.Writer{Dir: backupDir, ExcludeDirs: excludeDirs, ExcludeFiles: excludeFiles}
		if !cfg.NoRegistry() {
			w.Registry = firefox.SystemRegistry()
		}
		c.backups = w
	}

	err = c.Remove(RemoveExtensionsInput{Names: args, SkipConfirm: yes, BackupDir: backupDir})
	if errors.Is(err, firefox.ErrExtensionNotFound) {
		pterm.Info.Println("Run 'extkill list' to see installed extensions")
	}
	return err
}

func completeExtensionNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := setupCommand(cmd, args); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	engine, err := newEngine()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := lo.Without(engine.Catalog().Names(), args...)
	return names, cobra.ShellCompDirectiveNoFileComp
}
