package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dirien/virtualmin-sdk/automation"
	"github.com/dirien/virtualmin-sdk/cloud"
	"github.com/dirien/virtualmin-sdk/cloud/virtualmin"
	"github.com/dirien/virtualmin-sdk/common"
	"github.com/dirien/virtualmin-sdk/config"
	"github.com/dirien/virtualmin-sdk/model"
	vmTemplate "github.com/dirien/virtualmin-sdk/template"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	statePath  string
	platform   string
	verbose    bool

	serviceID string
	domain    string
	email     string
	plan      string

	initHost     string
	initUsername string
	initPassword string
	initOutput   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "virtualminctl",
		Short:        "Virtualmin virtual server provisioning tool",
		Long:         fmt.Sprintf("Create and manage %s virtual servers through the remote API", cloud.GetCloudProviderFullName("virtualmin")),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the Virtualmin config file")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "virtualminctl-state.yaml", "Path to the service state file")
	rootCmd.PersistentFlags().StringVar(&platform, "platform", "", "Platform name used in domain descriptions")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE:  runInit,
	}
	initCmd.Flags().StringVar(&initHost, "host", "https://localhost:10000", "Virtualmin URL including port")
	initCmd.Flags().StringVar(&initUsername, "username", "root", "Master administrator username")
	initCmd.Flags().StringVar(&initPassword, "password", "", "Master administrator password")
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "virtualmin.yaml", "Where to write the config file")

	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Check the connection to Virtualmin",
		RunE:  runTest,
	}
	plansCmd := &cobra.Command{
		Use:   "plans",
		Short: "List the plans offered for new domains",
		RunE:  runPlans,
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a virtual server for a service",
		RunE:  runCreate,
	}
	createCmd.Flags().StringVarP(&domain, "domain", "d", "", "Domain of the virtual server (required)")
	createCmd.Flags().StringVarP(&email, "email", "e", "", "Owner email address")
	createCmd.Flags().StringVarP(&plan, "plan", "p", "", "Virtualmin plan")
	mustMarkRequired(createCmd, "domain")

	upgradeCmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Re-apply a plan to a virtual server",
		RunE:  runLifecycle(automation.Automation.UpgradeServer, "upgraded"),
	}
	upgradeCmd.Flags().StringVarP(&plan, "plan", "p", "", "Virtualmin plan")

	serviceCmds := []*cobra.Command{
		createCmd,
		{
			Use:   "suspend",
			Short: "Disable a virtual server",
			RunE:  runLifecycle(automation.Automation.SuspendServer, "suspended"),
		},
		{
			Use:   "unsuspend",
			Short: "Enable a suspended virtual server",
			RunE:  runLifecycle(automation.Automation.UnsuspendServer, "unsuspended"),
		},
		{
			Use:   "terminate",
			Short: "Delete a virtual server",
			RunE:  runLifecycle(automation.Automation.TerminateServer, "terminated"),
		},
		upgradeCmd,
		{
			Use:   "login-url",
			Short: "Print a login link for a virtual server",
			RunE:  runLoginURL,
		},
		{
			Use:   "actions",
			Short: "Show the stored credentials of a virtual server",
			RunE:  runActions,
		},
	}
	for _, cmd := range serviceCmds {
		cmd.Flags().StringVarP(&serviceID, "service", "s", "", "Service ID (required)")
		mustMarkRequired(cmd, "service")
	}

	rootCmd.AddCommand(initCmd, testCmd, plansCmd)
	rootCmd.AddCommand(serviceCmds...)
	return rootCmd
}

func mustMarkRequired(cmd *cobra.Command, name string) {
	if err := cmd.MarkFlagRequired(name); err != nil {
		panic(err)
	}
}

func setupLogger() error {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func newAutomation() (automation.Automation, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	var opts []virtualmin.Option
	if platform != "" {
		opts = append(opts, virtualmin.WithPlatformName(platform))
	}
	return virtualmin.NewVirtualmin(*cfg, opts...)
}

func runInit(cmd *cobra.Command, _ []string) error {
	content, err := vmTemplate.NewTemplateConfig(model.Config{
		Host:     initHost,
		Username: initUsername,
		Password: initPassword,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(initOutput, []byte(content), 0o600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", common.Green("config written to"), initOutput)
	return nil
}

func runTest(cmd *cobra.Command, _ []string) error {
	a, err := newAutomation()
	if err != nil {
		return err
	}
	ok, msg := a.TestConfig(cmd.Context())
	if !ok {
		return errors.New(msg)
	}
	fmt.Fprintln(cmd.OutOrStdout(), common.Green("connection OK"))
	return nil
}

func runPlans(cmd *cobra.Command, _ []string) error {
	a, err := newAutomation()
	if err != nil {
		return err
	}
	for _, field := range a.GetProductConfig(cmd.Context()) {
		if field.Type != automation.FieldSelect {
			fmt.Fprintln(cmd.OutOrStdout(), "no plans available, enter a plan name manually")
			continue
		}
		for _, option := range field.Options {
			fmt.Fprintln(cmd.OutOrStdout(), option.Label)
		}
	}
	return nil
}

func runCreate(cmd *cobra.Command, _ []string) error {
	normalized, err := common.NormalizeDomain(domain)
	if err != nil {
		return err
	}
	a, err := newAutomation()
	if err != nil {
		return err
	}
	store, err := loadStore(statePath)
	if err != nil {
		return err
	}
	service := store.service(serviceID, email)
	if service.values()[common.PropertyDomain] != "" {
		return errors.Errorf("service %s already has a virtual server", serviceID)
	}
	err = a.CreateServer(cmd.Context(), automation.ServerArgs{
		Service:    service,
		Settings:   map[string]string{"plan": plan},
		Properties: map[string]string{"domain": normalized},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", common.Green("virtual server created:"), normalized)
	return printActions(cmd, a, service)
}

type lifecycleFunc func(automation.Automation, context.Context, automation.ServerArgs) error

func runLifecycle(op lifecycleFunc, done string) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, service, err := openService()
		if err != nil {
			return err
		}
		args := automation.ServerArgs{
			Service:    service,
			Settings:   map[string]string{"plan": plan},
			Properties: service.values(),
		}
		if err := op(a, cmd.Context(), args); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", common.Green("virtual server "+done+":"), args.Properties[common.PropertyDomain])
		return nil
	}
}

func runLoginURL(cmd *cobra.Command, _ []string) error {
	a, service, err := openService()
	if err != nil {
		return err
	}
	link, err := a.GetLoginURL(cmd.Context(), automation.ServerArgs{Service: service, Properties: service.values()})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func runActions(cmd *cobra.Command, _ []string) error {
	a, service, err := openService()
	if err != nil {
		return err
	}
	return printActions(cmd, a, service)
}

func printActions(cmd *cobra.Command, a automation.Automation, service *fileService) error {
	actions := a.GetActions(automation.ServerArgs{Service: service, Properties: service.values()})
	if len(actions) == 0 {
		return cloud.ErrServiceNotCreated
	}
	for _, action := range actions {
		if action.Type == automation.ActionButton {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", action.Label+":", action.Text)
	}
	return nil
}

func openService() (automation.Automation, *fileService, error) {
	a, err := newAutomation()
	if err != nil {
		return nil, nil, err
	}
	store, err := loadStore(statePath)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := store.state.Services[serviceID]; !ok {
		return nil, nil, errors.Wrapf(cloud.ErrServiceNotCreated, "unknown service %s", serviceID)
	}
	return a, store.service(serviceID, ""), nil
}
