// Package printing models the printer inventory and the routing rule
// engine that selects a printer for a label run.
package printing

import (
	"fmt"
	"strings"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// DefaultPort is the raw-socket port ZPL printers listen on.
const DefaultPort = 9100

// PrinterConfig describes one network label printer.
type PrinterConfig struct {
	ID           string
	Name         string
	Host         string
	Port         int
	Tags         []string
	Enabled      bool
	LocationHint string
}

// Endpoint returns the host:port dial target.
func (p *PrinterConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Validate checks the printer invariant: id, host and a sane port.
func (p *PrinterConfig) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return shared.NewConfigError("printer entry with empty id", nil)
	}
	if strings.TrimSpace(p.Host) == "" {
		return shared.NewConfigError("printer "+p.ID+" has no ip", nil)
	}
	if p.Port < 1 || p.Port > 65535 {
		return shared.NewConfigError(fmt.Sprintf("printer %s has invalid port %d", p.ID, p.Port), nil)
	}
	return nil
}

// RuleOperator is the comparison applied by a routing rule. Comparisons
// are case-insensitive.
type RuleOperator string

const (
	OpEquals     RuleOperator = "EQUALS"
	OpStartsWith RuleOperator = "STARTS_WITH"
	OpContains   RuleOperator = "CONTAINS"
)

// RoutingRule routes a label run to a printer when its field comparison
// matches the selection context.
type RoutingRule struct {
	ID        string
	Enabled   bool
	Field     string
	Op        RuleOperator
	Value     string
	PrinterID string
}

// matches evaluates the rule against a context value. Unknown operators
// are an error, not a silent miss.
func (r *RoutingRule) matches(contextValue string) (bool, error) {
	have := strings.ToUpper(contextValue)
	want := strings.ToUpper(r.Value)
	switch RuleOperator(strings.ToUpper(string(r.Op))) {
	case OpEquals:
		return have == want, nil
	case OpStartsWith:
		return strings.HasPrefix(have, want), nil
	case OpContains:
		return strings.Contains(have, want), nil
	default:
		return false, shared.NewValidationError(fmt.Sprintf("routing rule %s has unknown operator %q", r.ID, r.Op))
	}
}
