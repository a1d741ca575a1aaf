package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/4j17h/resourcer/internal/analyze"
	"github.com/4j17h/resourcer/internal/sourcemap"
)

var (
	listURLsInput       string
	listURLsJSON        bool
	listURLsShowSources bool
)

var listURLsCmd = &cobra.Command{
	Use:   "list-urls",
	Short: "Print sourcemap URLs discovered in a local JavaScript file",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, urls, err := analyze.LocalJSWithSourcemaps(listURLsInput)
		if err != nil {
			exitFatal(err)
			return nil
		}

		if listURLsJSON {
			return printJSON(urls)
		}
		for _, u := range urls {
			fmt.Println(u)
		}

		if listURLsShowSources {
			return printSources(doc.Content, urls)
		}
		return nil
	},
}

func printJSON(urls []string) error {
	enc, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}

// printSources parses each discovered local .map and prints its sources[]
// array, per spec.md §6's --show-sources flag.
func printSources(jsContent string, mapRefs []string) error {
	_ = jsContent
	for _, ref := range mapRefs {
		data, err := readLocalRef(ref)
		if err != nil {
			fmt.Printf("  (skipped %s: %v)\n", ref, err)
			continue
		}
		m, err := sourcemap.Parse(data)
		if err != nil {
			fmt.Printf("  (skipped %s: %v)\n", ref, err)
			continue
		}
		fmt.Printf("%s:\n", ref)
		for _, s := range m.Sources() {
			fmt.Printf("  %s\n", s)
		}
	}
	return nil
}

func init() {
	listURLsCmd.Flags().StringVar(&listURLsInput, "input", "", "local .js file to analyze")
	listURLsCmd.Flags().BoolVar(&listURLsJSON, "json", false, "print discovered urls as a JSON array")
	listURLsCmd.Flags().BoolVar(&listURLsShowSources, "show-sources", false, "additionally parse each local .map and print its sources[]")
	_ = listURLsCmd.MarkFlagRequired("input")
}
