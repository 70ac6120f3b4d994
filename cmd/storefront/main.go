// cmd/storefront/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	lang      string
	apiURL    string
	storePath string
	timeout   time.Duration

	shop *app
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Browse the catalog and manage your cart from the terminal",
	Long: `storefront talks to the cart API.

Signed out, the cart lives in a local guest store. After "storefront login"
the cart is kept on the server and the guest cart is left untouched until
you sign out again.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logrus.SetOutput(cmd.ErrOrStderr())
		logrus.SetLevel(logrus.WarnLevel)
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}

		var err error
		shop, err = newApp(cmd.Context(), cmd.OutOrStdout())
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if shop == nil {
			return nil
		}
		return shop.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "Message language (en, zh_TW)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (or set STOREFRONT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Guest store path (or set GUEST_STORE_PATH)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall command timeout")

	rootCmd.AddCommand(productsCmd, addCmd, updateCmd, removeCmd, clearCmd, listCmd, summaryCmd, countCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, checkoutCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandContext bounds one command by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
