package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-authenticity/internal/types"
)

var personasCommand = &cobra.Command{
	Use:   "personas",
	Short: "List loaded personas",
	RunE:  runPersonasCmd,
}

var personasLocale string

func init() {
	personasCommand.Flags().StringVarP(&personasLocale, "locale", "l", "", "Only list personas for this locale")

	rootCmd.AddCommand(personasCommand)
}

func runPersonasCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(context.Background(), cmd, false, false)
	if err != nil {
		return err
	}
	defer a.close()

	var list []*types.PersonaProfile
	if personasLocale != "" {
		list = a.personas.ByLocale(personasLocale)
	} else {
		for _, id := range a.personas.IDs() {
			p, err := a.personas.Get(id)
			if err != nil {
				return err
			}
			list = append(list, p)
		}
	}

	if flagJSON {
		return printJSON(list)
	}
	a.printer.PrintPersonas(list)
	return nil
}
