package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/cw"
	"github.com/ColonelBlimp/cwtrainer/internal/speech"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the Morse table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		lang := speech.ParseLanguage(viper.GetString(config.KeyLanguage))

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Char", "Pattern", "Spoken (" + lang.String() + ")"})
		for _, r := range cw.Characters() {
			t.AppendRow(table.Row{string(r), cw.Pattern(r), speech.Name(r, lang)})
		}
		t.Render()
		return nil
	},
}
