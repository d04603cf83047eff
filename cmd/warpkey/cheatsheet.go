package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/engine"
	"github.com/petems/warpkey/internal/keys"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chordStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Width(24)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

func cheatsheetCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "cheatsheet",
		Short: "Print the bindings of a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if profile != "" {
				if err := cfg.SetActive(profile); err != nil {
					return err
				}
			}

			active := cfg.Active()
			fmt.Println(headerStyle.Render(fmt.Sprintf("Profile: %s", active.Name)))
			if len(active.Bindings) == 0 {
				fmt.Println(dimStyle.Render("  no bindings"))
				return nil
			}
			for _, b := range active.Bindings {
				fmt.Printf("  %s %s\n",
					chordStyle.Render(b.DescribeKeys()),
					b.Target.Describe())
			}
			for _, b := range cfg.Reserved() {
				fmt.Printf("  %s %s\n",
					chordStyle.Render(b.DescribeKeys()),
					dimStyle.Render(reservedLabel(b.ID.String())))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "profile to print (default: active)")
	return cmd
}

func reservedLabel(id string) string {
	switch id {
	case config.CheatSheetID.String():
		return "cheat sheet (reserved)"
	case config.QuickAssignID.String():
		return "quick assign (reserved)"
	default:
		return "reserved"
	}
}

func conflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List combinations with more than one binding",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			reg := engine.BuildRegistry(cfg.Active().Bindings, cfg.Reserved())
			conflicts := reg.Conflicts()
			if len(conflicts) == 0 {
				fmt.Println("No conflicts.")
				return nil
			}

			for _, c := range conflicts {
				fmt.Println(warnStyle.Render(fmt.Sprintf("%s (%s)",
					keys.DescribeSignature(c.Signature), c.Trigger)))
				for _, id := range c.IDs {
					fmt.Printf("  %s\n", dimStyle.Render(id.String()))
				}
			}
			fmt.Printf("\n%d conflicting combinations; all of their bindings fire.\n", len(conflicts))
			return nil
		},
	}
}
