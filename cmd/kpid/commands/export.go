package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skubi6/kpi/task"
)

// ExportCmd groups export job commands.
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Manage export jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// ExportCreateCmd creates a new export job in the created state.
var ExportCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an export job",
	Long: `Create an export job in the created state. Execute it with 'kpid run'.

Examples:
  kpid export create --owner bob --source aXYZ --type csv
  kpid export create --owner bob --source aXYZ --type xlsx --lang English`,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		source, _ := cmd.Flags().GetString("source")
		exportType, _ := cmd.Flags().GetString("type")
		lang, _ := cmd.Flags().GetString("lang")
		groupSep, _ := cmd.Flags().GetString("group-sep")
		hierarchy, _ := cmd.Flags().GetBool("hierarchy-in-labels")
		allVersions, _ := cmd.Flags().GetBool("all-versions")
		return runExportCreate(owner, source, exportType, lang, groupSep, hierarchy, allVersions)
	},
}

func init() {
	ExportCreateCmd.Flags().String("owner", "", "Owner username (required)")
	ExportCreateCmd.Flags().String("source", "", "Source asset uid or URL (required)")
	ExportCreateCmd.Flags().String("type", "", "Output type: csv, xlsx, spss_labels (required)")
	ExportCreateCmd.Flags().String("lang", "", "Label language (_default for untranslated, _xml for raw names)")
	ExportCreateCmd.Flags().String("group-sep", "/", "Separator for hierarchical labels")
	ExportCreateCmd.Flags().Bool("hierarchy-in-labels", false, "Prefix labels with ancestor group labels")
	ExportCreateCmd.Flags().Bool("all-versions", true, "Include fields from all deployed schema versions")
	ExportCreateCmd.MarkFlagRequired("owner")
	ExportCreateCmd.MarkFlagRequired("source")
	ExportCreateCmd.MarkFlagRequired("type")

	ExportCmd.AddCommand(ExportCreateCmd)
}

func runExportCreate(owner, source, exportType, lang, groupSep string, hierarchy, allVersions bool) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	data := map[string]any{
		"source":                   source,
		"type":                     exportType,
		"group_sep":                groupSep,
		"hierarchy_in_labels":      fmt.Sprintf("%t", hierarchy),
		"fields_from_all_versions": fmt.Sprintf("%t", allVersions),
	}
	if lang != "" {
		data["lang"] = lang
	}

	t := task.New(task.KindExport, owner, data)
	if err := e.store.Create(t); err != nil {
		return fmt.Errorf("failed to create export job: %w", err)
	}

	fmt.Printf("Created export job %s\n", t.UID)
	return nil
}
