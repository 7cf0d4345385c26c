package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/spec-kit/issuetrack/internal/api/dto"
	"github.com/spec-kit/issuetrack/internal/authz"
	"github.com/spec-kit/issuetrack/internal/domain"
	"github.com/spec-kit/issuetrack/internal/session"
)

var (
	loginEmail    string
	loginPassword string

	regUsername string
	regEmail    string
	regPassword string
	regPhone    string
	regRole     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginRun()
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return registerRun()
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutRun()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity and permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return whoamiRun()
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&regUsername, "username", "", "Display name")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "Account password")
	registerCmd.Flags().StringVar(&regPhone, "phone", "", "Phone number")
	registerCmd.Flags().StringVar(&regRole, "role", string(domain.RoleCustomer), "Account role (customer|technician|admin)")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func loginRun() error {
	ctx := context.Background()

	res, err := apiClient.Login(ctx, dto.LoginRequest{
		Email:    loginEmail,
		Password: loginPassword,
	})
	if err != nil {
		return err
	}

	user, err := sessions.Login(ctx, res.Token)
	if err != nil {
		return err
	}

	ui.Success("logged in as %s (%s)", user.Username, user.Role)
	return nil
}

func registerRun() error {
	role := domain.Role(regRole)
	if !domain.ValidRole(role) {
		return fmt.Errorf("unknown role %q (expected customer, technician, or admin)", regRole)
	}

	err := apiClient.Register(context.Background(), dto.RegisterRequest{
		Username:    regUsername,
		Email:       regEmail,
		Password:    regPassword,
		PhoneNumber: regPhone,
		Role:        role,
	})
	if err != nil {
		return err
	}

	ui.Success("registered %s; log in with 'issuetrack login'", regUsername)
	return nil
}

func logoutRun() error {
	if err := sessions.Logout(context.Background()); err != nil {
		return err
	}
	ui.Success("logged out")
	return nil
}

func whoamiRun() error {
	if sessions.State() != session.StateAuthenticated {
		ui.Info("not logged in")
		return nil
	}

	user := sessions.CurrentUser()
	ui.Info("%s <%s> role=%s id=%s", user.Username, user.Email, user.Role, user.ID)
	ui.Info("permissions: %s", capabilityList(authz.Capabilities(user, nil)))
	return nil
}

// capabilityList renders a capability set as a stable comma-separated string.
func capabilityList(caps authz.CapabilitySet) string {
	if len(caps) == 0 {
		return "none"
	}
	names := make([]string, 0, len(caps))
	for c := range caps {
		names = append(names, string(c))
	}
	sort.Strings(names)
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}
