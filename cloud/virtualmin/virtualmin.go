// Package virtualmin implements the Automation interface for the Virtualmin
// control panel.
package virtualmin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dirien/virtualmin-sdk/automation"
	"github.com/dirien/virtualmin-sdk/cloud"
	"github.com/dirien/virtualmin-sdk/common"
	"github.com/dirien/virtualmin-sdk/model"
	vmTemplate "github.com/dirien/virtualmin-sdk/template"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultPlatform = "Paymenter"

// Virtualmin implements the Automation interface for Virtualmin.
type Virtualmin struct {
	client   *Client
	platform string
	tmpl     *vmTemplate.Template
}

// Option configures a Virtualmin adapter.
type Option func(*Virtualmin)

// WithPlatformName sets the platform name used in domain descriptions and
// suspend reasons.
func WithPlatformName(name string) Option {
	return func(v *Virtualmin) {
		v.platform = name
	}
}

// NewVirtualmin creates a new Virtualmin adapter.
func NewVirtualmin(cfg model.Config, opts ...Option) (*Virtualmin, error) {
	if cfg.Host == "" {
		return nil, errors.New("virtualmin host is required")
	}
	tmpl, err := vmTemplate.NewTemplateText()
	if err != nil {
		return nil, err
	}
	v := &Virtualmin{
		client:   NewClient(cfg),
		platform: defaultPlatform,
		tmpl:     tmpl,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// GetConfig returns the connection settings the host platform asks for.
func (v *Virtualmin) GetConfig() []automation.Field {
	return []automation.Field{
		{
			Name:        "host",
			Type:        automation.FieldText,
			Label:       "Hostname",
			Placeholder: "https://example.com:10000",
			Validation:  "url:http,https",
			Required:    true,
			Description: "The full URL to your Virtualmin server including port (usually 10000)",
		},
		{
			Name:        "username",
			Type:        automation.FieldText,
			Label:       "Username",
			Placeholder: "root",
			Required:    true,
			Description: "The master administrator username (usually root)",
		},
		{
			Name:        "password",
			Type:        automation.FieldPassword,
			Label:       "Password",
			Required:    true,
			Description: "The password for the master administrator",
		},
		{
			Name:        "verify_ssl",
			Type:        automation.FieldBoolean,
			Label:       "Verify SSL Certificate",
			Default:     false,
			Description: "Enable to verify SSL certificates. Disable for self-signed certificates.",
		},
	}
}

// GetProductConfig returns the plan selection. Plans are fetched from
// Virtualmin; a free-text field is returned when that is not possible.
func (v *Virtualmin) GetProductConfig(ctx context.Context) []automation.Field {
	plans, err := v.ListPlans(ctx)
	if err != nil {
		zap.S().Warnw("Virtualmin plans unavailable, falling back to text input", "error", err)
	}
	if len(plans) == 0 {
		return []automation.Field{
			{
				Name:        "plan",
				Type:        automation.FieldText,
				Label:       "Plan Name",
				Description: "The Virtualmin plan to use (leave empty for default)",
			},
		}
	}

	options := make([]automation.Option, 0, len(plans))
	for _, plan := range plans {
		options = append(options, automation.Option{Value: plan.Name, Label: plan.Name})
	}
	return []automation.Field{
		{
			Name:        "plan",
			Type:        automation.FieldSelect,
			Label:       "Account Plan",
			Options:     options,
			Description: "The Virtualmin plan to use for new domains",
		},
	}
}

// ListPlans returns the account plans defined on the server.
func (v *Virtualmin) ListPlans(ctx context.Context) ([]model.Plan, error) {
	resp, err := v.call(ctx, "list-plans", url.Values{"multiline": {""}}, "failed to list plans")
	if err != nil {
		return nil, err
	}
	var items []map[string]any
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &items); err != nil {
			return nil, errors.Wrap(err, "failed to decode plans")
		}
	}
	var plans []model.Plan
	for _, item := range items {
		if name := planName(item); name != "" {
			plans = append(plans, model.Plan{Name: name})
		}
	}
	return plans, nil
}

func planName(item map[string]any) string {
	for _, key := range []string{"name", "id"} {
		switch value := item[key].(type) {
		case string:
			if value != "" {
				return value
			}
		case float64:
			return fmt.Sprintf("%.0f", value)
		}
	}
	return ""
}

// GetCheckoutConfig returns the inputs a customer fills in at checkout.
func (v *Virtualmin) GetCheckoutConfig() []automation.Field {
	return []automation.Field{
		{
			Name:        "domain",
			Type:        automation.FieldText,
			Label:       "Domain",
			Placeholder: "example.com",
			Validation:  "domain",
			Required:    true,
			Description: "The domain name for your virtual server",
		},
	}
}

// TestConfig checks the connection settings. It returns true, or false and a
// message explaining what went wrong.
func (v *Virtualmin) TestConfig(ctx context.Context) (bool, string) {
	resp, err := v.client.Call(ctx, "list-domains", nil)
	if err != nil {
		return false, fmt.Sprintf("failed to connect to Virtualmin server: %s", err)
	}
	if !resp.Success() {
		if resp.Error != "" {
			return false, resp.Error
		}
		return false, "Unknown error occurred"
	}
	return true, ""
}

// CreateServer creates a new virtual server for the checkout domain.
func (v *Virtualmin) CreateServer(ctx context.Context, args automation.ServerArgs) error {
	domain, err := cloud.GetCheckoutDomain(args)
	if err != nil {
		return err
	}
	if args.Service == nil {
		return errors.New("service is required")
	}
	username, err := common.GenerateUsername()
	if err != nil {
		return err
	}
	pass, err := common.GeneratePassword()
	if err != nil {
		return err
	}

	params := url.Values{
		"domain":           {domain},
		"user":             {username},
		"pass":             {pass},
		"unix":             {""},
		"dir":              {""},
		"web":              {""},
		"dns":              {""},
		"mail":             {""},
		"limits-from-plan": {""},
	}
	email := args.Service.Email()
	if email != "" {
		params.Set("email", email)
	}
	plan := cloud.GetPlan(args)
	if plan != "" {
		params.Set("plan", plan)
	}
	desc, err := v.tmpl.GetTemplate(vmTemplate.TemplateDescription, vmTemplate.TextValues{Platform: v.platform, Email: email})
	if err != nil {
		return err
	}
	params.Set("desc", desc)

	zap.S().Infow("Creating Virtualmin domain", "domain", domain, "user", username, "plan", plan)
	if _, err := v.call(ctx, "create-domain", params, "failed to create virtual server"); err != nil {
		return errors.Wrap(err, "failed to create Virtualmin domain")
	}

	properties := []model.Property{
		{Key: common.PropertyUsername, Name: "Username", Value: username},
		{Key: common.PropertyPassword, Name: "Password", Value: pass},
		{Key: common.PropertyDomain, Name: "Domain", Value: domain},
	}
	for _, p := range properties {
		if err := args.Service.SetProperty(p); err != nil {
			return errors.Wrapf(err, "failed to store property %s", p.Key)
		}
	}
	zap.S().Infow("Virtualmin domain created", "domain", domain, "service", args.Service.ID())
	return nil
}

// SuspendServer disables the virtual server.
func (v *Virtualmin) SuspendServer(ctx context.Context, args automation.ServerArgs) error {
	domain, err := cloud.GetServiceDomain(args)
	if err != nil {
		return err
	}
	why, err := v.tmpl.GetTemplate(vmTemplate.TemplateSuspendReason, vmTemplate.TextValues{Platform: v.platform})
	if err != nil {
		return err
	}
	_, err = v.call(ctx, "disable-domain", url.Values{
		"domain":     {domain},
		"why":        {why},
		"subservers": {""},
	}, "failed to suspend virtual server")
	if err != nil {
		return errors.Wrap(err, "failed to suspend Virtualmin domain")
	}
	zap.S().Infow("Virtualmin domain suspended", "domain", domain)
	return nil
}

// UnsuspendServer enables the virtual server again.
func (v *Virtualmin) UnsuspendServer(ctx context.Context, args automation.ServerArgs) error {
	domain, err := cloud.GetServiceDomain(args)
	if err != nil {
		return err
	}
	_, err = v.call(ctx, "enable-domain", url.Values{
		"domain":     {domain},
		"subservers": {""},
	}, "failed to unsuspend virtual server")
	if err != nil {
		return errors.Wrap(err, "failed to unsuspend Virtualmin domain")
	}
	zap.S().Infow("Virtualmin domain unsuspended", "domain", domain)
	return nil
}

// TerminateServer deletes the virtual server and the stored credentials.
func (v *Virtualmin) TerminateServer(ctx context.Context, args automation.ServerArgs) error {
	domain, err := cloud.GetServiceDomain(args)
	if err != nil {
		return err
	}
	if args.Service == nil {
		return errors.New("service is required")
	}
	_, err = v.call(ctx, "delete-domain", url.Values{"domain": {domain}}, "failed to delete virtual server")
	if err != nil {
		return errors.Wrap(err, "failed to delete Virtualmin domain")
	}
	if err := args.Service.DeleteProperties(common.PropertyKeys...); err != nil {
		return errors.Wrap(err, "failed to delete service properties")
	}
	zap.S().Infow("Virtualmin domain deleted", "domain", domain, "service", args.Service.ID())
	return nil
}

// UpgradeServer re-applies the configured plan to the virtual server.
func (v *Virtualmin) UpgradeServer(ctx context.Context, args automation.ServerArgs) error {
	domain, err := cloud.GetServiceDomain(args)
	if err != nil {
		return err
	}
	params := url.Values{"domain": {domain}}
	if plan := cloud.GetPlan(args); plan != "" {
		params.Set("apply-plan", plan)
	}
	if _, err := v.call(ctx, "modify-domain", params, "failed to upgrade virtual server"); err != nil {
		return errors.Wrap(err, "failed to upgrade Virtualmin domain")
	}
	zap.S().Infow("Virtualmin domain upgraded", "domain", domain, "plan", params.Get("apply-plan"))
	return nil
}

// GetLoginURL returns a one-time login link for the virtual server, or the
// panel URL when no link can be created.
func (v *Virtualmin) GetLoginURL(ctx context.Context, args automation.ServerArgs) (string, error) {
	domain, err := cloud.GetServiceDomain(args)
	if err != nil {
		return "", err
	}
	if args.Properties[common.PropertyUsername] == "" {
		return "", cloud.ErrServiceNotCreated
	}

	resp, err := v.call(ctx, "create-login-link", url.Values{"domain": {domain}}, "failed to create login link")
	if err != nil {
		zap.S().Warnw("Virtualmin login link failed, using panel URL", "domain", domain, "error", err)
		return v.panelURL(), nil
	}
	var link struct {
		URL string `json:"url"`
	}
	if len(resp.Data) == 0 || json.Unmarshal(resp.Data, &link) != nil || link.URL == "" {
		return v.panelURL(), nil
	}
	return link.URL, nil
}

// GetActions lists the credentials and the login button of a created service.
func (v *Virtualmin) GetActions(args automation.ServerArgs) []automation.Action {
	if args.Properties[common.PropertyDomain] == "" {
		return []automation.Action{}
	}
	return []automation.Action{
		{Label: "Username", Text: valueOrNA(args.Properties[common.PropertyUsername]), Type: automation.ActionText},
		{Label: "Password", Text: valueOrNA(args.Properties[common.PropertyPassword]), Type: automation.ActionText},
		{Label: "Domain", Text: args.Properties[common.PropertyDomain], Type: automation.ActionText},
		{Label: "Access Virtualmin", Type: automation.ActionButton, Function: "getLoginUrl"},
	}
}

func valueOrNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func (v *Virtualmin) panelURL() string {
	return v.client.BaseURL() + "/virtual-server/"
}

// call runs program and turns a non-success status into an error.
func (v *Virtualmin) call(ctx context.Context, program string, params url.Values, fallback string) (*Response, error) {
	resp, err := v.client.Call(ctx, program, params)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(fallback); err != nil {
		return nil, err
	}
	return resp, nil
}

var _ automation.Automation = (*Virtualmin)(nil)
