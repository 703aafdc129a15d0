package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/latestcomment/influence-scoring/internal/services"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [country]",
	Short: "List the sample titles that can be scored",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		countries := services.Countries()
		if len(args) == 1 {
			countries = []models.Country{models.Country(args[0])}
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Country", "Title"})
		for _, country := range countries {
			titles, err := services.CatalogFor(country)
			if err != nil {
				return err
			}
			for _, title := range titles {
				t.AppendRow(table.Row{country, title})
			}
			t.AppendSeparator()
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
