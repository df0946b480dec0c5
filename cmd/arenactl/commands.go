package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"kyc_arena/internal/app"
	"kyc_arena/internal/domain"
	"kyc_arena/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// DefaultExchanges are created by the seed command when missing.
var DefaultExchanges = []string{"Binance", "Coinbase", "Kraken", "KuCoin", "Bybit", "OKX", "Huobi"}

// cliActor stands in for an administrator when the CLI calls admin-only
// operations. Its id never matches a stored account.
var cliActor = &domain.User{ID: 0, Username: "arenactl", Role: domain.RoleAdmin, IsApproved: true, IsEnabled: true}

type loader func() (*app.App, error)

// withApp opens the application for the duration of one command.
func withApp(load loader, fn func(ctx context.Context, a *app.App) error) error {
	a, err := load()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(context.Background(), a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// accountView is what the CLI prints for an account.
type accountView struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	IsApproved bool   `json:"isApproved"`
	IsEnabled  bool   `json:"isEnabled"`
}

func viewOf(u *domain.User) accountView {
	return accountView{ID: u.ID, Username: u.Username, Role: u.Role, IsApproved: u.IsApproved, IsEnabled: u.IsEnabled}
}

func newRootCmd(load loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "arenactl",
		Short:         "Maintenance commands for the submission arena",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCmd(load),
		seedCmd(load),
		makeAdminCmd(load),
		createUserCmd(load),
		deleteUserCmd(load),
		findUserCmd(load),
	)
	return root
}

func migrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Opening the app migrates the schema
			return withApp(load, func(context.Context, *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

func seedCmd(load loader) *cobra.Command {
	var (
		price     string
		demoUsers int
		perUser   int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default exchanges and, optionally, demo accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price %q: %w", price, err)
			}
			return withApp(load, func(ctx context.Context, a *app.App) error {
				created, err := seedExchanges(ctx, a.Service, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exchanges created: %d\n", created)
				if demoUsers == 0 {
					return nil
				}
				n, err := seedDemo(ctx, a.Service, demoUsers, perUser)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "demo submissions created: %d\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&price, "price", "10.00", "payout in USDT for newly created exchanges")
	cmd.Flags().IntVar(&demoUsers, "demo-users", 0, "number of approved demo users to create")
	cmd.Flags().IntVar(&perUser, "per-user", 10, "submissions per demo user")
	return cmd
}

// seedExchanges creates the missing default exchanges.
func seedExchanges(ctx context.Context, svc *service.Service, price decimal.Decimal) (int, error) {
	existing, err := svc.ListExchanges(ctx, false)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, ex := range existing {
		have[ex.Name] = true
	}
	created := 0
	for _, name := range DefaultExchanges {
		if have[name] {
			continue
		}
		if _, err := svc.CreateExchange(ctx, name, price, true); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// seedDemo creates demo users with submissions and random verdicts. Verdicts
// go through the lifecycle manager so the ledgers stay consistent.
func seedDemo(ctx context.Context, svc *service.Service, users, perUser int) (int, error) {
	statuses := []string{"good", "good", "good", "good", "good", "good", "good", "pending", "bad", "wrong_password"}
	created := 0
	for i := 1; i <= users; i++ {
		name := fmt.Sprintf("demo%03d", i)
		if _, err := svc.GetUserByUsername(ctx, name); err == nil {
			continue
		}
		u, err := svc.CreateUser(ctx, service.NewUser{Username: name, Password: "password" + strconv.Itoa(i), Approved: true})
		if err != nil {
			return created, err
		}
		for j := 1; j <= perUser; j++ {
			sub, err := svc.CreateSubmission(ctx, u, service.NewSubmission{
				Email:    fmt.Sprintf("%s.%d@example.com", name, j),
				Password: strconv.FormatUint(rand.Uint64(), 36),
				Exchange: DefaultExchanges[rand.Intn(len(DefaultExchanges))],
			})
			if err != nil {
				return created, err
			}
			created++
			if st := statuses[rand.Intn(len(statuses))]; st != "pending" {
				if _, err := svc.UpdateSubmissionStatus(ctx, sub.ID, st); err != nil {
					return created, err
				}
			}
		}
	}
	return created, nil
}

func makeAdminCmd(load loader) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "make-admin <username>",
		Short: "Promote an existing account to admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(ctx context.Context, a *app.App) error {
				u, err := a.Service.PromoteToAdmin(ctx, args[0], password)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), viewOf(u))
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "also set a new password")
	return cmd
}

func createUserCmd(load loader) *cobra.Command {
	var (
		password string
		admin    bool
		approved bool
	)
	cmd := &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create an account, or print it when it already exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(ctx context.Context, a *app.App) error {
				if u, err := a.Service.GetUserByUsername(ctx, args[0]); err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "already exists")
					return printJSON(cmd.OutOrStdout(), viewOf(u))
				}
				role := domain.RoleUser
				if admin {
					role = domain.RoleAdmin
				}
				u, err := a.Service.CreateUser(ctx, service.NewUser{
					Username: args[0],
					Password: password,
					Role:     role,
					Approved: approved || admin,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), viewOf(u))
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password (required)")
	cmd.Flags().BoolVar(&admin, "admin", false, "create an admin account")
	cmd.Flags().BoolVar(&approved, "approved", false, "approve the account for submissions")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func deleteUserCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <id|username>",
		Short: "Delete an account with its submissions, notifications and stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(ctx context.Context, a *app.App) error {
				id, err := resolveUser(ctx, a.Service, args[0])
				if err != nil {
					return err
				}
				if err := a.Service.DeleteUser(ctx, cliActor, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", id)
				return nil
			})
		},
	}
}

// resolveUser accepts a numeric id or a username.
func resolveUser(ctx context.Context, svc *service.Service, ref string) (uint, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return uint(id), nil
	}
	u, err := svc.GetUserByUsername(ctx, ref)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func findUserCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "find-user <username>",
		Short: "Print an account and its ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(ctx context.Context, a *app.App) error {
				u, err := a.Service.GetUserByUsername(ctx, args[0])
				if err != nil {
					return err
				}
				st, err := a.Service.GetStats(ctx, u.ID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"user": viewOf(u),
					"stats": map[string]any{
						"totalSubmissions":    st.TotalSubmissions,
						"totalGood":           st.TotalGood,
						"totalEarnings":       st.TotalEarnings.StringFixed(2),
						"lifetimeSubmissions": st.LifetimeSubmissions,
						"lifetimeEarnings":    st.LifetimeEarnings.StringFixed(2),
					},
				})
			})
		},
	}
}
