package cloud

import (
	"strings"

	"github.com/dirien/virtualmin-sdk/automation"
	"github.com/dirien/virtualmin-sdk/common"
	"github.com/pkg/errors"
)

var (
	// ErrDomainRequired is returned when a create request carries no domain.
	ErrDomainRequired = errors.New("domain is required")
	// ErrServiceNotCreated is returned when an operation needs a remote
	// account that the service does not have yet.
	ErrServiceNotCreated = errors.New("service has not been created")
)

// CloudProvider mapping hosting panel from short name to full name
var cloudProvider = map[string]string{
	"virtualmin": "Virtualmin",
}

func GetCloudProviderFullName(cloud string) string {
	return cloudProvider[cloud]
}

func GetCloudProviderCode(fullName string) string {
	for code, name := range cloudProvider {
		if name == fullName {
			return code
		}
	}
	return ""
}

// GetCheckoutDomain returns the domain chosen at checkout.
func GetCheckoutDomain(args automation.ServerArgs) (string, error) {
	domain := args.Properties["domain"]
	if strings.TrimSpace(domain) == "" {
		return "", ErrDomainRequired
	}
	return domain, nil
}

// GetServiceDomain returns the stored domain of an already created service.
func GetServiceDomain(args automation.ServerArgs) (string, error) {
	domain := args.Properties[common.PropertyDomain]
	if domain == "" {
		return "", ErrServiceNotCreated
	}
	return domain, nil
}

// GetPlan returns the configured plan, empty when none is set.
func GetPlan(args automation.ServerArgs) string {
	return strings.TrimSpace(args.Settings["plan"])
}
