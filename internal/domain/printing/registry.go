package printing

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// Registry holds the printer inventory and routing rules for one site.
// It is immutable after construction and safe to share.
type Registry struct {
	printers         map[string]*PrinterConfig
	rules            []*RoutingRule
	defaultPrinterID string
}

// inventoryDoc mirrors the printer inventory YAML. Unknown fields are
// ignored by the decoder.
type inventoryDoc struct {
	Printers []printerDoc `yaml:"printers"`
}

type printerDoc struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	IP           string   `yaml:"ip"`
	Port         int      `yaml:"port"`
	Tags         []string `yaml:"tags"`
	LocationHint string   `yaml:"locationHint"`
	Enabled      *bool    `yaml:"enabled"`
}

// routingDoc mirrors the routing rule YAML.
type routingDoc struct {
	DefaultPrinterID string    `yaml:"defaultPrinterId"`
	Rules            []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	ID      string `yaml:"id"`
	Enabled *bool  `yaml:"enabled"`
	When    struct {
		All []struct {
			Field string `yaml:"field"`
			Op    string `yaml:"op"`
			Value string `yaml:"value"`
		} `yaml:"all"`
	} `yaml:"when"`
	Then struct {
		PrinterID string `yaml:"printerId"`
	} `yaml:"then"`
}

// LoadRegistry parses the printer inventory and routing rule files. A
// non-empty defaultOverride (the PRINTER_DEFAULT_ID setting) replaces
// the routing file's defaultPrinterId.
func LoadRegistry(inventoryPath, routingPath, defaultOverride string) (*Registry, error) {
	invRaw, err := os.ReadFile(inventoryPath)
	if err != nil {
		return nil, shared.NewConfigError("printer inventory file not readable: "+inventoryPath, err)
	}
	var inv inventoryDoc
	if err := yaml.Unmarshal(invRaw, &inv); err != nil {
		return nil, shared.NewConfigError("printer inventory file malformed: "+inventoryPath, err)
	}

	routeRaw, err := os.ReadFile(routingPath)
	if err != nil {
		return nil, shared.NewConfigError("printer routing file not readable: "+routingPath, err)
	}
	var route routingDoc
	if err := yaml.Unmarshal(routeRaw, &route); err != nil {
		return nil, shared.NewConfigError("printer routing file malformed: "+routingPath, err)
	}

	defaultID := route.DefaultPrinterID
	if strings.TrimSpace(defaultOverride) != "" {
		defaultID = defaultOverride
	}
	return NewRegistry(buildPrinters(inv), buildRules(route), defaultID)
}

// NewRegistry assembles a registry from already-parsed parts. The
// default printer id must name a known printer.
func NewRegistry(printers []*PrinterConfig, rules []*RoutingRule, defaultPrinterID string) (*Registry, error) {
	r := &Registry{
		printers:         make(map[string]*PrinterConfig, len(printers)),
		rules:            rules,
		defaultPrinterID: strings.TrimSpace(defaultPrinterID),
	}
	for _, p := range printers {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.printers[p.ID] = p
	}
	if r.defaultPrinterID == "" {
		return nil, shared.NewConfigError("routing file has no defaultPrinterId", nil)
	}
	if _, ok := r.printers[r.defaultPrinterID]; !ok {
		return nil, shared.NewConfigError("default printer "+r.defaultPrinterID+" is not in the inventory", nil)
	}
	return r, nil
}

// SelectPrinter evaluates the rules in declaration order against the
// context and returns the first match's target, else the default
// printer. The selected printer must exist and be enabled.
func (r *Registry) SelectPrinter(context map[string]string) (*PrinterConfig, error) {
	targetID := r.defaultPrinterID
	for _, rule := range r.rules {
		if !rule.Enabled {
			continue
		}
		contextValue, present := context[rule.Field]
		if !present {
			continue
		}
		matched, err := rule.matches(contextValue)
		if err != nil {
			return nil, err
		}
		if matched {
			targetID = rule.PrinterID
			break
		}
	}
	printer, ok := r.printers[targetID]
	if !ok {
		return nil, shared.NewConfigError("selected printer "+targetID+" is not in the inventory", nil)
	}
	if !printer.Enabled {
		return nil, shared.NewConfigError("selected printer "+targetID+" is disabled", nil)
	}
	return printer, nil
}

// FindPrinter returns the printer with the given id, or nil when the id
// is unknown or the printer is disabled.
func (r *Registry) FindPrinter(id string) *PrinterConfig {
	p, ok := r.printers[strings.TrimSpace(id)]
	if !ok || !p.Enabled {
		return nil
	}
	return p
}

// DefaultPrinterID returns the fallback printer id.
func (r *Registry) DefaultPrinterID() string {
	return r.defaultPrinterID
}

func buildPrinters(doc inventoryDoc) []*PrinterConfig {
	printers := make([]*PrinterConfig, 0, len(doc.Printers))
	for _, d := range doc.Printers {
		p := &PrinterConfig{
			ID:           strings.TrimSpace(d.ID),
			Name:         strings.TrimSpace(d.Name),
			Host:         strings.TrimSpace(d.IP),
			Port:         d.Port,
			Tags:         d.Tags,
			Enabled:      d.Enabled == nil || *d.Enabled,
			LocationHint: strings.TrimSpace(d.LocationHint),
		}
		if p.Port == 0 {
			p.Port = DefaultPort
		}
		printers = append(printers, p)
	}
	return printers
}

func buildRules(doc routingDoc) []*RoutingRule {
	rules := make([]*RoutingRule, 0, len(doc.Rules))
	for _, d := range doc.Rules {
		rule := &RoutingRule{
			ID:        strings.TrimSpace(d.ID),
			Enabled:   d.Enabled == nil || *d.Enabled,
			PrinterID: strings.TrimSpace(d.Then.PrinterID),
		}
		if len(d.When.All) > 0 {
			rule.Field = strings.TrimSpace(d.When.All[0].Field)
			rule.Op = RuleOperator(strings.TrimSpace(d.When.All[0].Op))
			rule.Value = d.When.All[0].Value
		}
		rules = append(rules, rule)
	}
	return rules
}
