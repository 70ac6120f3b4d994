package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajoker/storefront/internal/cartapi"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and switch to the server cart",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and switch back to the guest cart",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Start payment for the server cart",
	Args:  cobra.NoArgs,
	RunE:  runCheckout,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	account, err := shop.client.Login(ctx, loginEmail, loginPassword)
	if err != nil {
		return err
	}
	if err := shop.saveSession(ctx, account); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	shop.auth.Login(ctx, account.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", account.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := shop.client.Logout(ctx); err != nil && !errors.Is(err, cartapi.ErrUnauthorized) {
		// the local session is dropped either way
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: server logout failed:", err)
	}
	if err := shop.sessions.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	shop.auth.Logout(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if !shop.auth.IsAuthenticated() {
		fmt.Fprintln(cmd.OutOrStdout(), "guest")
		return nil
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	account, err := shop.client.Me(ctx)
	if errors.Is(err, cartapi.ErrUnauthorized) {
		fmt.Fprintln(cmd.OutOrStdout(), "guest (session expired)")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", account.Name, account.Email)
	return nil
}

func runCheckout(cmd *cobra.Command, args []string) error {
	if !shop.auth.IsAuthenticated() {
		return fmt.Errorf("sign in with \"storefront login\" before checking out")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	checkout, err := shop.client.Checkout(ctx)
	if err != nil {
		return err
	}
	renderCheckout(cmd.OutOrStdout(), checkout)
	return nil
}
