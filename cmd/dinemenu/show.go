package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dukerupert/dinemenu/internal/browse"
	"github.com/dukerupert/dinemenu/internal/config"
	"github.com/dukerupert/dinemenu/internal/menu"
	"github.com/dukerupert/dinemenu/internal/model"
)

var showCmd = &cobra.Command{
	Use:   "show <restaurant>",
	Short: "Fetch a menu and print the filtered view",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().String("category", "", "category id (default: first category)")
	showCmd.Flags().String("query", "", "search query")
	showCmd.Flags().String("diet", "all", "diet filter (all, veg_only, non_veg_only)")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := config.Load(v)
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := menu.NewClient(menu.Config{
		BaseURL:      cfg.MenuAPIURL,
		AssetBaseURL: cfg.AssetBaseURL,
		Timeout:      cfg.FetchTimeout,
	}, nil, nil)

	doc, err := client.FetchMenu(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", menu.BannerMessage(err), err)
	}

	view := browse.NewViewState(doc)
	if c, _ := cmd.Flags().GetString("category"); c != "" {
		if _, ok := doc.Category(c); !ok {
			return fmt.Errorf("unknown category %q", c)
		}
		view.SelectCategory(c)
	}
	q, _ := cmd.Flags().GetString("query")
	view.SetQuery(q)
	d, _ := cmd.Flags().GetString("diet")
	view.SetDiet(browse.ParseDietFilter(d))

	return printMenu(cmd.OutOrStdout(), doc, view)
}

func printMenu(out io.Writer, doc *model.MenuDocument, view browse.ViewState) error {
	fmt.Fprintln(out, doc.Title)

	var tabs []string
	for _, c := range browse.Tabs(doc) {
		name := c.Name
		if c.ID == view.CategoryID {
			name = "[" + name + "]"
		}
		tabs = append(tabs, name)
	}
	fmt.Fprintln(out, strings.Join(tabs, "  "))

	sections := view.Apply(doc)
	if len(sections) == 0 {
		fmt.Fprintln(out, "\nNo dishes match.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, sec := range sections {
		fmt.Fprintf(tw, "\n%s\n", sec.SubCategory.Name)
		for _, it := range sec.Items {
			var notes []string
			if it.ChefRecommended {
				notes = append(notes, "chef's pick")
			}
			if !it.Active {
				notes = append(notes, "unavailable")
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", it.Name, it.Diet, it.PriceLabel(), strings.Join(notes, ", "))
		}
	}
	return tw.Flush()
}
