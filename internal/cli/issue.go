package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/issuetrack/internal/authz"
	"github.com/spec-kit/issuetrack/internal/domain"
	"github.com/spec-kit/issuetrack/internal/store"
)

var (
	issueTitle      string
	issueDesc       string
	issueLocation   string
	issueDepartment string
	issueStatus     string
	exportOut       string
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage issues",
	Long:  "File, list, edit, and delete issues. What you can do depends on your role.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun()
	},
}

var issueListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List issues visible to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun()
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one issue in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueShowRun(args[0])
	},
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File a new issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueCreateRun()
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueUpdateRun(cmd, args[0])
	},
}

var issueDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueDeleteRun(args[0])
	},
}

var issueExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all issues to CSV (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueExportRun()
	},
}

func init() {
	issueCreateCmd.Flags().StringVar(&issueTitle, "title", "", "Issue title")
	issueCreateCmd.Flags().StringVar(&issueDesc, "description", "", "Longer description")
	issueCreateCmd.Flags().StringVar(&issueLocation, "location", "", "Where the problem is")
	issueCreateCmd.Flags().StringVar(&issueDepartment, "department", "", "Responsible department")
	_ = issueCreateCmd.MarkFlagRequired("title")
	_ = issueCreateCmd.MarkFlagRequired("location")
	_ = issueCreateCmd.MarkFlagRequired("department")

	issueUpdateCmd.Flags().StringVar(&issueTitle, "title", "", "New title")
	issueUpdateCmd.Flags().StringVar(&issueDesc, "description", "", "New description")
	issueUpdateCmd.Flags().StringVar(&issueLocation, "location", "", "New location")
	issueUpdateCmd.Flags().StringVar(&issueDepartment, "department", "", "New department")
	issueUpdateCmd.Flags().StringVar(&issueStatus, "status", "", "New status (OPEN|IN_PROGRESS|CLOSED), technicians and admins only")

	issueExportCmd.Flags().StringVarP(&exportOut, "out", "o", "issues.csv", "Output file")

	issueCmd.AddCommand(issueListCmd, issueShowCmd, issueCreateCmd, issueUpdateCmd, issueDeleteCmd, issueExportCmd)
	rootCmd.AddCommand(issueCmd)
}

func issueListRun() error {
	if err := requireAuthenticated(); err != nil {
		return err
	}

	list, err := issues.List(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.Info("no issues")
		return nil
	}

	user := sessions.CurrentUser()
	table := ui.Table([]string{"ID", "Title", "Location", "Department", "Status", "Reporter", "Created", "Actions"})
	for i := range list {
		issue := &list[i]
		_ = table.Append([]string{
			issue.ID,
			issue.Title,
			issue.Location,
			issue.Department,
			StatusColor(issue.Status),
			issue.Username,
			issue.CreatedAt.Format("2006-01-02"),
			capabilityList(authz.Capabilities(user, issue)),
		})
	}
	_ = table.Render()
	return nil
}

func issueShowRun(id string) error {
	if err := requireAuthenticated(); err != nil {
		return err
	}

	if _, err := issues.List(context.Background()); err != nil {
		return err
	}
	issue, err := issues.Get(id)
	if err != nil {
		return err
	}

	user := sessions.CurrentUser()
	if !user.IsStaff() && !issue.ReportedBy(user) {
		return fmt.Errorf("you may only view issues you reported")
	}

	ui.Info("issue %s", issue.ID)
	fmt.Fprintf(ui.Out, "  title:       %s\n", issue.Title)
	fmt.Fprintf(ui.Out, "  description: %s\n", issue.Description)
	fmt.Fprintf(ui.Out, "  location:    %s\n", issue.Location)
	fmt.Fprintf(ui.Out, "  department:  %s\n", issue.Department)
	fmt.Fprintf(ui.Out, "  status:      %s\n", StatusColor(issue.Status))
	fmt.Fprintf(ui.Out, "  reporter:    %s <%s> %s\n", issue.Username, issue.UserEmail, issue.UserPhoneNumber)
	fmt.Fprintf(ui.Out, "  created:     %s\n", issue.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(ui.Out, "  you may:     %s\n", capabilityList(authz.Capabilities(user, issue)))
	return nil
}

func issueCreateRun() error {
	if err := requireAuthenticated(); err != nil {
		return err
	}
	if !authz.CanCreate(sessions.CurrentUser()) {
		return fmt.Errorf("only customers may file issues")
	}

	created, err := issues.Create(context.Background(), store.CreateInput{
		Title:       issueTitle,
		Description: issueDesc,
		Location:    issueLocation,
		Department:  issueDepartment,
	})
	if err != nil {
		return err
	}

	ui.Success("filed issue %s (%s)", created.ID, created.Status)
	return nil
}

func issueUpdateRun(cmd *cobra.Command, id string) error {
	if err := requireAuthenticated(); err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := issues.List(ctx); err != nil {
		return err
	}
	issue, err := issues.Get(id)
	if err != nil {
		return err
	}

	user := sessions.CurrentUser()
	if !authz.CanEdit(user, issue) {
		return fmt.Errorf("you may only edit issues you reported")
	}

	input := store.UpdateInput{}
	if cmd.Flags().Changed("title") {
		input.Title = &issueTitle
	}
	if cmd.Flags().Changed("description") {
		input.Description = &issueDesc
	}
	if cmd.Flags().Changed("location") {
		input.Location = &issueLocation
	}
	if cmd.Flags().Changed("department") {
		input.Department = &issueDepartment
	}
	if cmd.Flags().Changed("status") {
		if !authz.CanChangeStatus(user) {
			return fmt.Errorf("only technicians and admins may change status")
		}
		status := domain.IssueStatus(issueStatus)
		if !domain.ValidStatus(status) {
			return fmt.Errorf("unknown status %q (expected OPEN, IN_PROGRESS, or CLOSED)", issueStatus)
		}
		input.Status = &status
	}

	updated, err := issues.Update(ctx, id, input)
	if err != nil {
		return err
	}

	ui.Success("updated issue %s (%s)", updated.ID, updated.Status)
	return nil
}

func issueDeleteRun(id string) error {
	if err := requireAuthenticated(); err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := issues.List(ctx); err != nil {
		return err
	}
	issue, err := issues.Get(id)
	if err != nil {
		return err
	}

	if !authz.CanDelete(sessions.CurrentUser(), issue) {
		return fmt.Errorf("you may only delete issues you reported")
	}

	if err := issues.Delete(ctx, id); err != nil {
		return err
	}

	ui.Success("deleted issue %s", id)
	return nil
}

func issueExportRun() error {
	if err := requireAdmin(); err != nil {
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := issues.ExportCSV(context.Background(), f); err != nil {
		return err
	}

	ui.Success("exported issues to %s", exportOut)
	return nil
}
