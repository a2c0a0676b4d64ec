package cli

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/config/file"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Configure flight API credentials",
	Long: `Store OAuth2 client credentials for the flight data provider.

Credentials are saved to the tracker config file with restricted
permissions and used for the client-credentials token flow.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Print("Client ID: ")
	clientID := readLine(reader)
	if clientID == "" {
		return errors.New("client ID is required")
	}

	cmd.Print("Client secret: ")
	clientSecret := readPassword()
	cmd.Println()
	if clientSecret == "" {
		return errors.New("client secret is required")
	}

	if err := configStore.Set(file.KeyFlightClientID, clientID); err != nil {
		return err
	}
	if err := configStore.Set(file.KeyFlightClientSecret, clientSecret); err != nil {
		return err
	}

	cmd.Printf("Credentials saved to %s\n", configStore.Path())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
