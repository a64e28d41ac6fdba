package main

import (
	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage saved chat sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			_, store, err := buildService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, s := range store.Sessions() {
				marker := " "
				if s.ID == store.CurrentSessionID() {
					marker = "*"
				}
				cmd.Printf("%s %s  %-30s  %s  %s\n", marker, s.ID, s.Title, s.Model, s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			_, store, err := buildService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if !store.DeleteSession(args[0]) {
				cmd.PrintErrln("no such session:", args[0])
				return nil
			}
			store.Flush()
			cmd.Println("deleted", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every session and its persisted state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			_, store, err := buildService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteAllSessions(ctx); err != nil {
				return err
			}
			store.Flush()
			cmd.Println("all sessions cleared")
			return nil
		},
	})

	return cmd
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List or select models",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			_, store, err := buildService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, m := range store.Models() {
				marker := " "
				if m.ID == store.SelectedModel() {
					marker = "*"
				}
				cmd.Printf("%s %-40s %-20s %s\n", marker, m.ID, m.Name, m.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <id>",
		Short: "Select the model for new messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			_, store, err := buildService(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if !store.SetModel(args[0]) {
				cmd.PrintErrln("unknown model:", args[0])
				return nil
			}
			store.Flush()
			cmd.Println("selected", args[0])
			return nil
		},
	})

	return cmd
}
