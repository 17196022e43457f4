package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate against the todo-me server",
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store the access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		client := newClient()
		token, err := client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := saveToken(token); err != nil {
			return err
		}
		fmt.Println("Logged in.")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email> <name>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		client := newClient()
		if err := client.Register(cmd.Context(), args[0], args[1], password); err != nil {
			return err
		}
		fmt.Println("Account created. Run 'todo auth login' to log in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := saveToken(""); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// saveToken writes the token into the config file viper is using,
// creating the default config location if none exists yet.
func saveToken(token string) error {
	viper.Set("token", token)
	if viper.ConfigFileUsed() != "" {
		return viper.WriteConfig()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".todo")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}
