package main

import (
	"fmt"
	"strconv"

	"srp-backend/internal/adapter/repository/mysql"
	"srp-backend/internal/usecase/identity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd.Context())
			gdb, err := a.openDB()
			if err != nil {
				return err
			}
			if err := mysql.Migrate(cmd.Context(), gdb); err != nil {
				return err
			}
			a.log.Info("schema migrated")
			return nil
		},
	}
}

func identityUsecase(a *app) (*identity.Usecase, error) {
	gdb, err := a.openDB()
	if err != nil {
		return nil, err
	}
	return identity.NewUsecase(mysql.NewAuthzRepository(gdb), mysql.NewGormUoW(gdb), a.log), nil
}

func parseID(what, raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, raw)
	}
	return id, nil
}

func userCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}

	var admin bool
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a user and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := identityUsecase(fromContext(cmd.Context()))
			if err != nil {
				return err
			}
			u, err := uc.CreateUser(cmd.Context(), args[0], admin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}
	add.Flags().BoolVar(&admin, "admin", false, "make the user a system administrator")
	cmd.AddCommand(add)
	return cmd
}

func groupCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "group", Short: "Manage groups"}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a group and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := identityUsecase(fromContext(cmd.Context()))
			if err != nil {
				return err
			}
			g, err := uc.CreateGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), g.ID)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add-member <group-id> <user-id>",
		Short: "Put a user into a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseID("group id", args[0])
			if err != nil {
				return err
			}
			userID, err := parseID("user id", args[1])
			if err != nil {
				return err
			}
			uc, err := identityUsecase(fromContext(cmd.Context()))
			if err != nil {
				return err
			}
			return uc.AddMember(cmd.Context(), groupID, userID)
		},
	})
	return cmd
}

// nameCommand seeds the display names of static game data (ship types, systems, regions).
func nameCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "name", Short: "Manage display names"}
	cmd.AddCommand(&cobra.Command{
		Use:   "put <kind> <id> <name>",
		Short: "Store the display name of a type, system or region",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd.Context())
			switch args[0] {
			case "type", "system", "region":
			default:
				return fmt.Errorf("kind must be type, system or region, got %q", args[0])
			}
			id, err := parseID("id", args[1])
			if err != nil {
				return err
			}
			gdb, err := a.openDB()
			if err != nil {
				return err
			}
			if err := mysql.NewNameRepository(gdb).Put(cmd.Context(), args[0], id, args[2]); err != nil {
				return err
			}
			a.log.Info("name stored", zap.String("kind", args[0]), zap.Uint64("id", id))
			return nil
		},
	})
	return cmd
}
