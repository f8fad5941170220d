package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vbgateway/internal/engine"
	"vbgateway/internal/gateway"
	"vbgateway/internal/order"
	"vbgateway/internal/payment"
	"vbgateway/internal/price"
	"vbgateway/kit/db"
	"vbgateway/kit/locker"
)

// adminctl drives back-office payment operations against the shared payments
// table: capturing blocked authorizations, voiding them, refunding captures.

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Back-office payment operations",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("dsn", os.Getenv("MYSQL_DSN"), "MySQL DSN of the payments database")
	root.PersistentFlags().String("config", os.Getenv("GATEWAY_CONFIG"), "gateway config file")
	root.PersistentFlags().String("gateway", "vb_main", "gateway instance id")
	root.PersistentFlags().Bool("debug", false, "log raw bank traffic")

	root.AddCommand(captureCmd(), voidCmd(), refundCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func captureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture <payment-id>",
		Short: "Complete a blocked authorization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, repo, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			p, err := loadPayment(cmd, repo, args[0])
			if err != nil {
				return err
			}
			if err := eng.CapturePayment(cmd.Context(), p, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "payment %s captured (%s)\n", p.ID, p.Amount)
			return nil
		},
	}
}

func voidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "void <payment-id>",
		Short: "Release a blocked authorization without capturing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, repo, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			p, err := loadPayment(cmd, repo, args[0])
			if err != nil {
				return err
			}
			if err := eng.VoidPayment(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "payment %s voided\n", p.ID)
			return nil
		},
	}
}

func refundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refund <payment-id>",
		Short: "Refund a captured payment, fully or partially",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, repo, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			p, err := loadPayment(cmd, repo, args[0])
			if err != nil {
				return err
			}

			var amount *price.Price
			if number, _ := cmd.Flags().GetString("amount"); number != "" {
				amt := price.New(number, p.Amount.CurrencyCode)
				amount = &amt
			}
			if err := eng.RefundPayment(cmd.Context(), p, amount); err != nil {
				return err
			}
			if amount != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "payment %s refunded %s\n", p.ID, *amount)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "payment %s refunded in full (%s)\n", p.ID, p.Amount)
			}
			return nil
		},
	}
	cmd.Flags().String("amount", "", "amount to refund, defaults to the full captured amount")
	return cmd
}

func buildEngine(cmd *cobra.Command) (*engine.Engine, payment.RepositoryContract, error) {
	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		return nil, nil, errors.New("--dsn or MYSQL_DSN is required")
	}

	cfg := gateway.DevConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := gateway.LoadConfig(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	g, err := db.Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	paymentRepo := payment.NewGormRepository(g)

	gatewayID, _ := cmd.Flags().GetString("gateway")
	debug, _ := cmd.Flags().GetBool("debug")
	client := gateway.NewCircuitBreakerClient(gateway.NewFakeClient(cfg), gateway.CircuitBreakerConfig{})

	eng := engine.New(engine.Settings{
		GatewayID: gatewayID,
		Intent:    engine.IntentAuthorize,
		UseIPN:    engine.UseIPNBoth,
		Debug:     debug,
		Test:      cfg.Mode == gateway.ModeTest,
	}, client, paymentRepo, order.NewGormRepository(g), locker.NewMutexLocker(), nil)
	return eng, paymentRepo, nil
}

func loadPayment(cmd *cobra.Command, repo payment.RepositoryContract, paymentID string) (*payment.Payment, error) {
	p, err := repo.LoadUnchanged(cmd.Context(), paymentID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("payment %s not found", paymentID)
		}
		return nil, fmt.Errorf("load payment %s: %w", paymentID, err)
	}
	return p, nil
}
