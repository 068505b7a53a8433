package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/container"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user; the password is read from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		bio, _ := cmd.Flags().GetString("bio")

		password, err := readPassword(cmd.ErrOrStderr(), os.Stdin)
		if err != nil {
			return err
		}

		svc, cleanup, err := newServices(cmd.Context())
		defer cleanup()
		if err != nil {
			return err
		}
		res, err := svc.Auth.Register(cmd.Context(), application.RegisterInput{
			Name:     name,
			Email:    email,
			Password: password,
			Bio:      bio,
		})
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		cmd.Printf("Created user %s (%s) in the %s store\n", res.User.ID, res.User.Email, container.GetStore().Driver)
		cmd.Printf("Token: %s\n", res.Token)
		return nil
	},
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise, so the command also works with piped input.
func readPassword(prompt io.Writer, in *os.File) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	return readPasswordLine(in)
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}
