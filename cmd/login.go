package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gotrakt/trakt"
)

var authCode string

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize with your Trakt account",
	Long: `Authorize with your Trakt account using the configured auth method and
store the resulting tokens.

The device flow (the default) shows a short code to enter on the Trakt
website. The PIN and OAuth flows print a URL and prompt for the code it
yields; --code skips that prompt.`,
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored tokens",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVar(&authCode, "code", "", "authorization code or PIN (skips the interactive prompt)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := trakt.Init(ctx, trakt.AcquireOptions{
		Code:   authCode,
		Prompt: promptForCode,
		OnDeviceCode: func(code *trakt.DeviceCode) {
			fmt.Printf("\nGo to %s and enter the code:\n\n", code.VerificationURL)
			fmt.Printf("    %s\n\n", code.UserCode)
			fmt.Printf("Waiting for approval (code expires in %d minutes)...\n", code.ExpiresIn/60)
		},
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("✓ Login successful!")

	if creds := client.Auth().Credentials(); creds.RefreshToken == "" {
		fmt.Println("→ No refresh token was issued; log in again once the token expires.")
	}

	return nil
}

// promptForCode reads one line from stdin
func promptForCode(message string) (string, error) {
	fmt.Print(message)

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", fmt.Errorf("no input given")
	}

	return strings.TrimSpace(scanner.Text()), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	auth, err := trakt.DefaultAuth()
	if err != nil {
		return err
	}

	if err := auth.Clear(); err != nil {
		return err
	}

	fmt.Println("✓ Stored tokens cleared")
	return nil
}
