package scaffold

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppendWorkflowSecrets adds ${{ secrets.NAME }} env entries for the given
// variable names under the test-execution step of the CI workflow at path. the
// step is recognized by a run command containing "playwright test". keys
// already present are left untouched. returns the names actually added.
func AppendWorkflowSecrets(path string, names []string) ([]string, error) {
	doc, err := loadWorkflow(path)
	if err != nil {
		return nil, err
	}

	step := findTestStep(doc)
	if step == nil {
		return nil, fmt.Errorf("no playwright test step found in %s", path)
	}

	env := mapValue(step, "env")
	if env == nil {
		env = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		step.Content = append(step.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "env"}, env)
	}

	var added []string
	for _, name := range names {
		if mapValue(env, name) != nil {
			continue
		}
		env.Content = append(env.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprintf("${{ secrets.%s }}", name)})
		added = append(added, name)
	}

	if len(added) == 0 {
		return nil, nil
	}
	return added, saveWorkflow(path, doc)
}

// RemoveWorkflowSecrets removes env entries for the given names from the
// test-execution step. missing entries and a missing step are no-ops - the
// workflow may have been hand-edited since.
func RemoveWorkflowSecrets(path string, names []string) error {
	doc, err := loadWorkflow(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	step := findTestStep(doc)
	if step == nil {
		return nil
	}
	env := mapValue(step, "env")
	if env == nil {
		return nil
	}

	remove := make(map[string]struct{}, len(names))
	for _, n := range names {
		remove[n] = struct{}{}
	}

	changed := false
	var kept []*yaml.Node
	for i := 0; i+1 < len(env.Content); i += 2 {
		if _, ok := remove[env.Content[i].Value]; ok {
			changed = true
			continue
		}
		kept = append(kept, env.Content[i], env.Content[i+1])
	}
	if !changed {
		return nil
	}
	env.Content = kept

	return saveWorkflow(path, doc)
}

// loadWorkflow parses the workflow file into a yaml document node.
func loadWorkflow(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from project config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read workflow %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow %s: %w", path, err)
	}
	return &doc, nil
}

func saveWorkflow(path string, doc *yaml.Node) error {
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc.Content[0]); err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close workflow encoder: %w", err)
	}

	if err := os.WriteFile(path, []byte(buf.String()), 0o600); err != nil {
		return fmt.Errorf("write workflow %s: %w", path, err)
	}
	return nil
}

// findTestStep walks jobs.*.steps looking for the step whose run command
// invokes playwright test.
func findTestStep(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]

	jobs := mapValue(root, "jobs")
	if jobs == nil || jobs.Kind != yaml.MappingNode {
		return nil
	}

	for i := 1; i < len(jobs.Content); i += 2 {
		steps := mapValue(jobs.Content[i], "steps")
		if steps == nil || steps.Kind != yaml.SequenceNode {
			continue
		}
		for _, step := range steps.Content {
			run := mapValue(step, "run")
			if run != nil && strings.Contains(run.Value, "playwright test") {
				return step
			}
		}
	}
	return nil
}

// mapValue returns the value node for key in a mapping node, or nil.
func mapValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
