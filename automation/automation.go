// Package automation provides interfaces for hosting panel automation operations.
package automation

import (
	"context"

	"github.com/dirien/virtualmin-sdk/model"
)

// Automation defines the interface for hosting panel lifecycle operations.
type Automation interface {
	GetConfig() []Field
	GetProductConfig(ctx context.Context) []Field
	GetCheckoutConfig() []Field
	TestConfig(ctx context.Context) (bool, string)
	CreateServer(ctx context.Context, args ServerArgs) error
	SuspendServer(ctx context.Context, args ServerArgs) error
	UnsuspendServer(ctx context.Context, args ServerArgs) error
	TerminateServer(ctx context.Context, args ServerArgs) error
	UpgradeServer(ctx context.Context, args ServerArgs) error
	GetLoginURL(ctx context.Context, args ServerArgs) (string, error)
	GetActions(args ServerArgs) []Action
}

// ServerArgs contains arguments for server operations.
type ServerArgs struct {
	Service model.Service
	// Settings are the product settings, e.g. the plan.
	Settings map[string]string
	// Properties are the checkout options on create and the stored service
	// properties afterwards.
	Properties map[string]string
}

// Option is a selectable value of a Field.
type Option struct {
	Value string
	Label string
}

// Field describes a configuration input rendered by the host platform.
type Field struct {
	Name        string
	Type        string
	Label       string
	Placeholder string
	Description string
	Validation  string
	Required    bool
	Default     any
	Options     []Option
}

// Action is an entry shown to the customer on the service page.
type Action struct {
	Label    string
	Text     string
	Type     string
	Function string
}

// Field and action types.
const (
	FieldText     = "text"
	FieldPassword = "password"
	FieldBoolean  = "boolean"
	FieldSelect   = "select"

	ActionText   = "text"
	ActionButton = "button"
)
