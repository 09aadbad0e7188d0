package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/bundle"
	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/ui"
)

var starterFiles = map[string]string{
	bundle.ManifestFileName: `name: my-bundle
bundleType: bundle-type.yaml
schemas:
  Feature: schemas/feature.yaml
  Requirement: schemas/requirement.yaml
domainKnowledge: GUIDE.md
`,
	"bundle-type.yaml": `name: sdd
entities:
  Feature:
    directory: features
  Requirement:
    directory: requirements
relations:
  - title: realizes
    fromEntity: Requirement
    fromField: realizesFeatureIds
    toEntity: Feature
    multiplicity: many
`,
	"schemas/feature.yaml": `type: Feature
fields:
  id:
    type: string
    required: true
  title:
    type: string
    required: true
  status:
    type: enum
    values: [draft, approved, done]
    default: draft
`,
	"schemas/requirement.yaml": `type: Requirement
fields:
  id:
    type: string
    required: true
  title:
    type: string
    required: true
  priority:
    type: number
    min: 1
    max: 5
  realizesFeatureIds:
    type: ref[]
    targets: [Feature]
`,
	"features/feat-1.yaml": `id: FEAT-1
title: Example feature
status: draft
`,
	"requirements/req-1.yaml": `id: REQ-1
title: Example requirement
priority: 3
realizesFeatureIds:
  - FEAT-1
`,
	"GUIDE.md": `# My bundle

Describe the domain here: what the entity types mean, how ids are
assigned, and any conventions an editor (human or agent) should follow.
`,
}

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create a new bundle",
	Long:  `Creates a starter bundle with a manifest, a bundle-type definition, schemas, and one example entity per type.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		if _, err := os.Stat(filepath.Join(dir, bundle.ManifestFileName)); err == nil {
			return handleError(diag.CodeBadRequest,
				fmt.Errorf("bundle already exists at %s", dir), "")
		}

		for rel, content := range starterFiles {
			path := filepath.Join(dir, rel)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return handleError(diag.CodeInternal, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err), "")
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return handleError(diag.CodeInternal, fmt.Errorf("failed to write %s: %w", path, err), "")
			}
		}

		if jsonOutput {
			outputSuccess(map[string]interface{}{"path": dir}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Created bundle at %s", ui.FilePath(dir)))
		fmt.Println(ui.Hint(fmt.Sprintf("Try: bindery check --bundle-path %s", dir)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
