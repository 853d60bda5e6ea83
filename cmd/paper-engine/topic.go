// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/internal/document"
	"github.com/pdiddy/paper-engine/internal/search"
	"github.com/pdiddy/paper-engine/internal/topic"
	"github.com/pdiddy/paper-engine/pkg/types"
)

var topicCmd = &cobra.Command{
	Use:   "topic <file>",
	Short: "Show the inferred topic and keywords of a draft",
	Long: `Topic reads a draft and prints the topic and keywords inferred for each
language, along with the query generate would search for.`,
	Args: cobra.ExactArgs(1),
	RunE: runTopic,
}

func init() {
	topicCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	rootCmd.AddCommand(topicCmd)
}

// topicOutput is what the topic command prints.
type topicOutput struct {
	Topic    map[types.Language]string   `json:"topic" yaml:"topic"`
	Keywords map[types.Language][]string `json:"keywords" yaml:"keywords"`
	Query    string                      `json:"query" yaml:"query"`
}

func runTopic(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	doc, err := document.NewReader(logger).Read(args[0])
	if err != nil {
		return err
	}
	info := topic.New(logger).Analyze(doc.Content)

	q := search.BuildQuery(info.Topic[types.English], info.Keywords[types.English], cfg.Search.QuerySuffix)
	if q.IsEmpty() {
		q = search.BuildQuery(info.Topic[types.Chinese], info.Keywords[types.Chinese], nil)
	}
	out := topicOutput{Topic: info.Topic, Keywords: info.Keywords, Query: q.Text()}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling topic: %w", err)
	}
	_, err = w.Write(data)
	return err
}
